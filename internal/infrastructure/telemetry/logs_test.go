package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/beezio/marketplace/internal/infrastructure/telemetry"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{ServiceName: "marketplace-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(ctx))
	assert.False(t, lp.ZapCore().Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_NilZapCore(t *testing.T) {
	var lp *telemetry.LoggerProvider
	assert.False(t, lp.ZapCore().Enabled(zapcore.InfoLevel))
}

func TestNewLoggerProvider_EnabledWithoutCollector(t *testing.T) {
	ctx := context.Background()

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "127.0.0.1:1",
		ServiceName:       "marketplace-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, lp.IsEnabled())
	assert.True(t, lp.ZapCore().Enabled(zapcore.InfoLevel))

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = lp.Shutdown(shutdownCtx)
}
