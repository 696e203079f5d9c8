package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger writing to w. JSON if
// SEARCHBIN_JSON_LOG=1/true else text. debug forces the debug level;
// otherwise SEARCHBIN_LOG_LEVEL decides and defaults to warn.
func Init(w io.Writer, debug bool) *slog.Logger {
	level := levelFromEnv()
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{AddSource: false, Level: level}
	var handler slog.Handler
	if jsonMode() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Debug("logging initialized", "json", jsonMode(), "level", level.String())
	return logger
}

func jsonMode() bool {
	mode := strings.ToLower(os.Getenv("SEARCHBIN_JSON_LOG"))
	return mode == "1" || mode == "true" || mode == "json"
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("SEARCHBIN_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "warn", "":
		return slog.LevelWarn
	default:
		return slog.LevelWarn
	}
}
