// Package logging builds the logrus logger shared by discovery, the cache
// and the CLI. The TUI owns the terminal, so interactive sessions log to a
// file under the cache directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tormodhaugland/pv/internal/fs"
)

// Options selects where log entries go.
type Options struct {
	Level  string // logrus level name; empty means warn
	File   string // append to this file when set
	Stderr bool   // also write to stderr
}

// Logger is a logrus logger that owns its output file.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New builds a logger from opts. With neither File nor Stderr set, entries
// are discarded.
func New(opts Options) (*Logger, error) {
	level := logrus.WarnLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	l := &Logger{Logger: logrus.New()}
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	var writers []io.Writer
	if opts.File != "" {
		if err := fs.EnsureDir(filepath.Dir(opts.File)); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
	}
	if opts.Stderr {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		l.SetOutput(io.Discard)
	case 1:
		l.SetOutput(writers[0])
	default:
		l.SetOutput(io.MultiWriter(writers...))
	}

	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l, _ := New(Options{})
	return l
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
