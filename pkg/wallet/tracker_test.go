package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	balances   map[string]float64
	positions  map[string][]types.Position
	balanceErr error
}

func (f *fakeReader) USDCBalance(_ context.Context, address string) (float64, error) {
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balances[address], nil
}

func (f *fakeReader) Positions(_ context.Context, address string) ([]types.Position, error) {
	return f.positions[address], nil
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	reader := &fakeReader{}
	accounts := map[string]string{"follower": testAddress}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "valid_config",
			cfg:     &Config{Reader: reader, Accounts: accounts, PollInterval: time.Minute, Logger: logger},
			wantErr: false,
		},
		{
			name:    "nil_config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name:    "nil_logger",
			cfg:     &Config{Reader: reader, Accounts: accounts, PollInterval: time.Minute},
			wantErr: true,
		},
		{
			name:    "nil_reader",
			cfg:     &Config{Accounts: accounts, PollInterval: time.Minute, Logger: logger},
			wantErr: true,
		},
		{
			name:    "no_accounts",
			cfg:     &Config{Reader: reader, PollInterval: time.Minute, Logger: logger},
			wantErr: true,
		},
		{
			name:    "zero_poll_interval",
			cfg:     &Config{Reader: reader, Accounts: accounts, Logger: logger},
			wantErr: true,
		},
		{
			name:    "negative_poll_interval",
			cfg:     &Config{Reader: reader, Accounts: accounts, PollInterval: -time.Second, Logger: logger},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.PollInterval, tracker.pollInterval)
		})
	}
}

func TestTracker_Poll_PublishesGauges(t *testing.T) {
	reader := &fakeReader{
		balances: map[string]float64{testAddress: 100},
		positions: map[string][]types.Position{
			testAddress: {
				{TokenID: "a", Size: 10, CurrentValue: 5},
				{TokenID: "b", Size: 20, CurrentValue: 7.5},
			},
		},
	}
	tracker, err := New(&Config{
		Reader:       reader,
		Accounts:     map[string]string{"poll-test": testAddress},
		PollInterval: time.Minute,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	snap, err := tracker.Poll(context.Background(), "poll-test")

	require.NoError(t, err)
	assert.Equal(t, 2, snap.Positions)
	assert.InDelta(t, 12.5, snap.PositionValue, 1e-9)
	assert.InDelta(t, 112.5, snap.PortfolioValue, 1e-9)
	assert.InDelta(t, 100.0, testutil.ToFloat64(USDCBalance.WithLabelValues("poll-test")), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(ActivePositions.WithLabelValues("poll-test")), 1e-9)
	assert.InDelta(t, 112.5, testutil.ToFloat64(PortfolioValue.WithLabelValues("poll-test")), 1e-9)
}

func TestTracker_Poll_CountsErrors(t *testing.T) {
	tracker, err := New(&Config{
		Reader:       &fakeReader{balanceErr: errors.New("rpc down")},
		Accounts:     map[string]string{"error-test": testAddress},
		PollInterval: time.Minute,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	before := testutil.ToFloat64(UpdateErrorsTotal.WithLabelValues("error-test"))
	_, err = tracker.Poll(context.Background(), "error-test")

	require.Error(t, err)
	assert.InDelta(t, before+1, testutil.ToFloat64(UpdateErrorsTotal.WithLabelValues("error-test")), 1e-9)
}

func TestTracker_Poll_UnknownAccount(t *testing.T) {
	tracker, err := New(&Config{
		Reader:       &fakeReader{},
		Accounts:     map[string]string{"follower": testAddress},
		PollInterval: time.Minute,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	_, err = tracker.Poll(context.Background(), "target")
	assert.Error(t, err)
}

func TestTracker_Run_ContextCancellation(t *testing.T) {
	tracker, err := New(&Config{
		Reader:       &fakeReader{},
		Accounts:     map[string]string{"follower": testAddress},
		PollInterval: 100 * time.Millisecond,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	err = tracker.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTracker_Run_ImmediateCancellation(t *testing.T) {
	tracker, err := New(&Config{
		Reader:       &fakeReader{},
		Accounts:     map[string]string{"follower": testAddress},
		PollInterval: time.Minute,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- tracker.Run(ctx)
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not exit after context cancellation")
	}
}

func TestSummarize(t *testing.T) {
	snap := Summarize(testAddress, 0, nil)

	assert.Equal(t, testAddress, snap.Address)
	assert.Zero(t, snap.Positions)
	assert.Zero(t, snap.PortfolioValue)
}
