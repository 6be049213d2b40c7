package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChanneledLoggerCreatesAllChannels(t *testing.T) {
	logger, err := NewChanneledLogger(nil)
	require.NoError(t, err)
	defer logger.Close()

	assert.NotNil(t, logger.System())
	assert.NotNil(t, logger.Session())
	assert.NotNil(t, logger.Events())
	assert.NotNil(t, logger.Analytics())
	assert.NotNil(t, logger.Personalization())
	assert.NotNil(t, logger.Auth())
	assert.NotNil(t, logger.Cache())
	assert.NotNil(t, logger.Archive())
	assert.NotNil(t, logger.Live())
	assert.NotNil(t, logger.Perf())
	assert.NotNil(t, logger.Debug())
}

func TestGetChannelFallsBackToSystem(t *testing.T) {
	logger, err := NewChanneledLogger(nil)
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, logger.System(), logger.GetChannel(Channel("nonexistent")))
}

func TestSetChannelLevel(t *testing.T) {
	logger, err := NewChanneledLogger(nil)
	require.NoError(t, err)
	defer logger.Close()

	require.NoError(t, logger.SetChannelLevel(ChannelCache, slog.LevelDebug))
	assert.Error(t, logger.SetChannelLevel(Channel("nonexistent"), slog.LevelDebug))
}

func TestSanitizeUserID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "****"},
		{"abcd", "****"},
		{"user-12345", "us****45"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeUserID(tt.in))
	}
}
