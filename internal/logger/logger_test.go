package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug")
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Wrap(zap.New(core)).With(zap.String("run_id", "r-1"))

	l.Debug("hidden")
	l.Info("filtered", zap.Int("kept", 3))
	l.Warn("careful")
	l.Error("boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "filtered", entries[0].Message)
	assert.Equal(t, "r-1", entries[0].ContextMap()["run_id"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["kept"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestZeroLoggerIsSafe(t *testing.T) {
	var l Logger
	assert.NotPanics(t, func() {
		l.Info("nothing")
		l.With(zap.String("k", "v")).Error("still nothing")
	})
}
