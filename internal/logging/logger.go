package logging

import (
	"log/slog"
	"os"
)

// Level picks the stdout log level for an environment.
func Level(appEnv string) slog.Level {
	if appEnv == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Setup initializes the global slog logger with JSON output to stdout.
func Setup(level slog.Level) {
	slog.SetDefault(slog.New(stdoutHandler(level)))
}

// SetupWithDB fans records out to stdout and the system_logs sink.
func SetupWithDB(level slog.Level, db *DBHandler) {
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(level), db)))
}

func stdoutHandler(level slog.Level) slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}
