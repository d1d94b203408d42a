package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

var logFile *os.File

// NewLogger builds the process logger. Output always goes to stderr; when a
// save directory is set, a timestamped file copy is kept as well.
func NewLogger(debug bool, saveDirectory string) (*slog.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	out := io.Writer(os.Stderr)
	if saveDirectory != "" {
		if err := os.MkdirAll(saveDirectory, 0755); err != nil {
			return nil, fmt.Errorf("error creating log directory: %w", err)
		}
		name := filepath.Join(saveDirectory, "skyflipper-"+time.Now().Format("2006-01-02-15-04-05")+".log")
		f, err := os.Create(name)
		if err != nil {
			return nil, fmt.Errorf("error creating log file: %w", err)
		}
		logFile = f
		out = io.MultiWriter(os.Stderr, f)
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}

func FlushLog() {
	if logFile != nil {
		_ = logFile.Sync()
	}
}

func FlushAndClose() {
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
	}
}
