// Package logging provides the operational logger used by indexing,
// watch mode and storage: a plain *log.Logger in front of either stderr or
// a rotating file sink, never used for caller-facing errors.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the rotating file sink. A zero Config logs to stderr.
type Config struct {
	// FilePath is the log file to write to. Empty means stderr.
	FilePath string
	// MaxSizeMB is the size in megabytes at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 5
	defaultMaxAgeDays = 14
)

// New builds a *log.Logger per cfg. With no FilePath, it writes to stderr
// with the standard flags; with a FilePath, writes go through a lumberjack
// sink that rotates by size, count and age.
func New(cfg Config) *log.Logger {
	var w io.Writer = os.Stderr
	if cfg.FilePath != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = defaultMaxSizeMB
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = defaultMaxBackups
		}
		maxAge := cfg.MaxAgeDays
		if maxAge <= 0 {
			maxAge = defaultMaxAgeDays
		}
		w = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     maxAge,
			Compress:   cfg.Compress,
		}
	}
	return log.New(w, "", log.LstdFlags)
}

// Discard returns a logger that drops everything, for tests and callers
// that have not configured logging.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
