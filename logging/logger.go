package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/turbot/pipe-fittings/constants"
	"github.com/turbot/pipe-fittings/sanitize"
)

// EnvLogLevel is the environment variable read by the CLI to set the log level
const EnvLogLevel = "ETL_LOG_LEVEL"

const redacted = "XXXXXXXXXXXXXX"

// keys whose values are always redacted
var credentialKeys = []string{"access_key", "secret_key", "session_token", "credentials"}

// Initialize sets the default logger, using the level from EnvLogLevel
func Initialize(name string) {
	slog.SetDefault(NewLogger(name, os.Stderr, LevelFromString(os.Getenv(EnvLogLevel))))
}

// NewLogger returns a JSON logger writing to w which sanitizes log entries
func NewLogger(name string, w io.Writer, level slog.Leveler) *slog.Logger {
	if level == constants.LogLevelOff {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	}

	handlerOptions := &slog.HandlerOptions{
		Level: level,

		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if isCredentialKey(a.Key) {
				return slog.String(a.Key, redacted)
			}
			sanitized := sanitize.Instance.SanitizeKeyValue(a.Key, a.Value.Any())

			return slog.Attr{
				Key:   a.Key,
				Value: slog.AnyValue(sanitized),
			}
		},
	}
	return slog.New(slog.NewJSONHandler(w, handlerOptions)).With("source", name)
}

// LevelFromString converts a level name to a slog level; unrecognised values turn logging off
func LevelFromString(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off":
		return constants.LogLevelOff
	default:
		return constants.LogLevelOff
	}
}

func isCredentialKey(key string) bool {
	key = strings.ToLower(key)
	for _, k := range credentialKeys {
		if key == k {
			return true
		}
	}
	return false
}
