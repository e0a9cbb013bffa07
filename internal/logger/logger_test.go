package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedact(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(Redact(core))

	log.With(zap.String("api_key", "sk-123")).Info("call",
		zap.String("access_token", "abc"),
		zap.Int("input_tokens", 42),
		zap.String("purpose", "path-gen"),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, Redacted, fields["api_key"])
	assert.Equal(t, Redacted, fields["access_token"])
	assert.Equal(t, int64(42), fields["input_tokens"])
	assert.Equal(t, "path-gen", fields["purpose"])
}

func TestRedact_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(Redact(core))

	log.Info("ignored")
	log.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestIsSensitive(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"api_key", true},
		{"APIKey", true},
		{"gemini_api_key", true},
		{"refresh_token", true},
		{"token", true},
		{"Authorization", true},
		{"input_tokens", false},
		{"storage_key", false},
		{"model", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, isSensitive(tt.key))
		})
	}
}

func TestNew(t *testing.T) {
	log, err := New("info", false)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("warn", true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel), "verbose forces debug")

	_, err = New("shout", false)
	assert.Error(t, err)
}
