package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"flock/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNew_BuildsLogger(t *testing.T) {
	log, err := New("debug")
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestSugaredLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))
	log.SetServiceName("fanout-service")

	ctx := logging.WithMessageID(context.Background(), "msg-1")
	ctx = logging.WithOwnerID(ctx, "owner-1")

	log.InfowCtx(ctx, "entries persisted", "count", 3)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "msg-1", fields["message_id"])
	assert.Equal(t, "owner-1", fields["owner_id"])
	assert.Equal(t, "fanout-service", fields["service_name"])
	assert.EqualValues(t, 3, fields["count"])
}

func TestSugaredLogger_ContextServiceNameWins(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))
	log.SetServiceName("default")

	ctx := logging.WithServiceName(context.Background(), "api-service")
	log.WarnwCtx(ctx, "cache unavailable")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "api-service", logs.All()[0].ContextMap()["service_name"])
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	assert.NotPanics(t, func() {
		log.ErrorwCtx(context.Background(), "ignored", "error", "boom")
	})
}

func TestSugaredLogger_WithKeepsServiceName(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := FromZap(zap.New(core))
	base.SetServiceName("fanout-service")

	child := base.With("component", "fanout-worker")
	child.InfowCtx(context.Background(), "started")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "fanout-worker", fields["component"])
	assert.Equal(t, "fanout-service", fields["service_name"])
}

func TestEncoderConfig(t *testing.T) {
	enc := EncoderConfig()
	assert.Equal(t, "timestamp", enc.TimeKey)
	assert.Equal(t, "message", enc.MessageKey)
	assert.Equal(t, "level", enc.LevelKey)
}

func TestParseLevel_CaseInsensitive(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("Debug"))
}
