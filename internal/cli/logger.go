package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	envLogLevel     = "NGXER_LOG_LEVEL"
	defaultLogLevel = "warn"
)

func parseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level %q (expected debug|info|warn|error)", level)
	}
}

// NewLogger writes JSON records at level and above to w.
func NewLogger(level string, w io.Writer) (*slog.Logger, error) {
	parsed, err := parseLogLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, err
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parsed})
	return slog.New(h), nil
}

// loggerFromCommand resolves the level from --log-level, then
// NGXER_LOG_LEVEL, then the default.
func loggerFromCommand(cmd *cobra.Command) (*slog.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	if strings.TrimSpace(level) == "" {
		level = os.Getenv(envLogLevel)
	}
	if strings.TrimSpace(level) == "" {
		level = defaultLogLevel
	}
	logger, err := NewLogger(level, cmd.ErrOrStderr())
	if err != nil {
		return nil, exitCodeError(exitUsage, err)
	}
	return logger, nil
}
