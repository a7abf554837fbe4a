// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"todolists/internal/config"
)

// Log file rotation limits.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// New returns a text logger writing to errOut at Warn level, or Debug when
// cfg.Debug is set. When cfg.LogFile is set, output is also written to that
// file with size-based rotation. The returned closer releases the file.
func New(cfg *config.Config, errOut io.Writer) (*slog.Logger, io.Closer) {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var w io.Writer = errOut
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		w = io.MultiWriter(errOut, file)
		closer = file
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
