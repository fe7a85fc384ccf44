package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNew_WiresHeartbeatAndTracker(t *testing.T) {
	cfg := paperConfig()
	cfg.HTTPPort = "0"

	application, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NotNil(t, application.tracker)
	assert.NotNil(t, application.httpServer)
	require.NotNil(t, application.components.Executor.heartbeat)

	application.components.Executor.heartbeat()

	require.NoError(t, application.Shutdown())
	assert.Error(t, application.ctx.Err())
	assert.NoError(t, application.Shutdown())
}

func TestNew_InvalidAccounts(t *testing.T) {
	cfg := paperConfig()
	cfg.FollowerAddress = ""

	_, err := New(cfg, zaptest.NewLogger(t))

	assert.Error(t, err)
}
