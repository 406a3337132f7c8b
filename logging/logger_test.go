package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/pipe-fittings/constants"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Leveler
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "off", want: constants.LogLevelOff},
		{in: "", want: constants.LogLevelOff},
		{in: "verbose", want: constants.LogLevelOff},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFromString(tt.in))
		})
	}
}

func TestNewLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("songplay-etl", &buf, slog.LevelInfo)
	logger.Info("connecting", "secret_key", "abc123", "Access_Key", "AKIA")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, redacted, entry["secret_key"])
	assert.Equal(t, redacted, entry["Access_Key"])
	assert.Equal(t, "songplay-etl", entry["source"])
	assert.Equal(t, "connecting", entry["msg"])
}

func TestNewLogger_Off(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("songplay-etl", &buf, constants.LogLevelOff)
	logger.Error("boom")
	assert.Empty(t, buf.String())
}
