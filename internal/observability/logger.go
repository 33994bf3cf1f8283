package observability

import (
	"log/slog"

	"github.com/couchcryptid/mocktesttime/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default. It writes to stdout.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

// NopLogger discards everything. Components fall back to it when given a nil logger.
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
