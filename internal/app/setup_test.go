package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mselser95/polymarket-mirror/internal/clob"
	"github.com/mselser95/polymarket-mirror/internal/storage"
	"github.com/mselser95/polymarket-mirror/pkg/config"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func paperConfig() *config.Config {
	return &config.Config{
		TargetAddress:          "0x1111111111111111111111111111111111111111",
		FollowerAddress:        "0x2222222222222222222222222222222222222222",
		CLOBURL:                "http://127.0.0.1:0",
		DataAPIURL:             "http://127.0.0.1:0",
		HTTPBaseBackoff:        10 * time.Millisecond,
		HTTPMaxBackoff:         100 * time.Millisecond,
		HTTPMaxRetries:         2,
		MetadataCacheTTL:       time.Minute,
		RPCURLs:                []string{"http://127.0.0.1:0"},
		USDCContractAddress:    "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
		FetchInterval:          time.Second,
		TooOldTimestamp:        time.Hour,
		RetryLimit:             3,
		Amplification:          1,
		SlippageTolerance:      0.05,
		FastAttempts:           3,
		OrderbookDelay:         10 * time.Millisecond,
		RetryDelay:             10 * time.Millisecond,
		MakerWait:              10 * time.Millisecond,
		CallMaxAttempts:        2,
		CallRetryDelay:         time.Millisecond,
		BuildMaxAttempts:       2,
		BuildRetryDelay:        time.Millisecond,
		ExecutionMode:          "paper",
		BreakerHysteresisRatio: 1,
		StorageMode:            "memory",
	}
}

func TestNewPolicies(t *testing.T) {
	cfg := paperConfig()

	p := NewPolicies(cfg)

	assert.Equal(t, 3, p.HTTP.MaxAttempts)
	assert.Equal(t, 2, p.Call.MaxAttempts)
	assert.Equal(t, 2, p.Build.MaxAttempts)
	assert.Equal(t, 1, p.Fetch.MaxAttempts)
}

func TestBuild_BookFetchRetriedOnlyByHTTPLayer(t *testing.T) {
	var bookHits, marketHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/book" {
			bookHits.Add(1)
		} else {
			marketHits.Add(1)
		}
		http.Error(w, `{"error":"upstream"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := paperConfig()
	cfg.CLOBURL = server.URL
	cfg.CallMaxAttempts = 3

	c, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Books.BestOpposing(context.Background(), "1001", types.SideBuy)
	assert.False(t, ok)
	assert.Equal(t, int32(cfg.HTTPMaxRetries+1), bookHits.Load())

	meta := c.Metadata.Resolve(context.Background(), "0xcondition")
	assert.True(t, meta.Fallback)
	assert.Equal(t, int32(cfg.HTTPMaxRetries+1), marketHits.Load())
}

func TestNewLedger_Memory(t *testing.T) {
	ledger, err := NewLedger(context.Background(), paperConfig(), zap.NewNop())

	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryLedger{}, ledger)
}

func TestNewGateway_PaperMode(t *testing.T) {
	cfg := paperConfig()

	gateway, err := NewGateway(cfg, NewPolicies(cfg), zap.NewNop())

	require.NoError(t, err)
	assert.IsType(t, &clob.PaperClient{}, gateway)
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name        string
		minBalance  float64
		wantBreaker bool
	}{
		{name: "without_breaker", minBalance: 0, wantBreaker: false},
		{name: "with_breaker", minBalance: 10, wantBreaker: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := paperConfig()
			cfg.MinBalanceUSD = tt.minBalance

			c, err := Build(context.Background(), cfg, zap.NewNop())
			require.NoError(t, err)
			defer c.Close()

			assert.NotNil(t, c.Executor)
			assert.NotNil(t, c.Engine)
			assert.Equal(t, tt.wantBreaker, c.Breaker != nil)
			assert.Equal(t, tt.wantBreaker, c.Executor.gate != nil)
		})
	}
}

func TestBuild_MissingAccounts(t *testing.T) {
	cfg := paperConfig()
	cfg.TargetAddress = ""

	_, err := Build(context.Background(), cfg, zap.NewNop())

	assert.Error(t, err)
}
