package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger returns the application logger. Without GENCHAT_DEBUG all
// records are discarded, since the TUI owns the terminal. With it, records go
// to debug.log as text and to debug.jsonl as JSON, both in dataDir. The
// cleanup function closes the files.
func SetupLogger(dataDir string, debug bool, level slog.Level) (*slog.Logger, func() error) {
	if !debug {
		return slog.New(slog.DiscardHandler), func() error { return nil }
	}

	// 0600: debug output may include prompts
	textFile, err := os.OpenFile(filepath.Join(dataDir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		slog.Error("failed to open debug log, logging to stderr", "error", err)
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), func() error { return nil }
	}
	jsonFile, err := os.OpenFile(filepath.Join(dataDir, "debug.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		slog.Error("failed to open json log, using text log only", "error", err)
		return slog.New(slog.NewTextHandler(textFile, &slog.HandlerOptions{Level: level})), textFile.Close
	}

	logger := SetupLoggerWithWriters(textFile, jsonFile, level)
	logger.Debug("debug logging started", "data_dir", dataDir, "level", level)

	cleanup := func() error {
		jsonErr := jsonFile.Close()
		if err := textFile.Close(); err != nil {
			return err
		}
		return jsonErr
	}
	return logger, cleanup
}

// SetupLoggerWithWriters fans records out to a text and a JSON handler.
func SetupLoggerWithWriters(text, json io.Writer, level slog.Level) *slog.Logger {
	textHandler := slog.NewTextHandler(text, &slog.HandlerOptions{Level: level})
	jsonHandler := slog.NewJSONHandler(json, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(textHandler, jsonHandler))
}
