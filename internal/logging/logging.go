// Package logging builds the zerolog logger used by the command line tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Config selects the level and output format.
type Config struct {
	Level  string // debug, info, warn, error (default: info)
	Format string // console or json (default: console)
	Quiet  bool   // only errors
}

// New returns a logger writing to w.
func New(w io.Writer, cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if cfg.Quiet {
		level = zerolog.ErrorLevel
	}

	var out io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", "console", "text":
		out = ConsoleWriter(w)
	case "json":
		out = w
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (want console or json)", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown log level %q", name)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConsoleWriter returns a human readable writer, coloured only on a terminal.
func ConsoleWriter(w io.Writer) io.Writer {
	noColor := !IsTerminal(w)

	cw := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.TimeOnly}

	// file results read better as "views/a.pug: message"
	cw.FormatPrepare = func(m map[string]any) error {
		if file, ok := m["file"]; ok {
			m["message"] = fmt.Sprintf("%v: %v", file, m["message"])
			delete(m, "file")
		}
		return nil
	}

	return cw
}
