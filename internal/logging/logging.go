// Package logging builds the slog logger used by every command. Records
// are rendered by charmbracelet/log so terminal output matches the ui
// package palette.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/willfong/incremental-datagen/internal/ui"
)

var formatters = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

// Options configure New
type Options struct {
	Level  string
	Format string

	// Timestamps adds a time field to every record
	Timestamps bool
}

// New returns a slog.Logger writing to w
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	formatter := log.TextFormatter
	if opts.Format != "" {
		f, ok := formatters[opts.Format]
		if !ok {
			return nil, fmt.Errorf("invalid log format %q", opts.Format)
		}
		formatter = f
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.Timestamps,
		TimeFormat:      time.TimeOnly,
		Prefix:          "datagen",
	})
	logger.SetStyles(styles())

	return slog.New(logger), nil
}

func styles() *log.Styles {
	s := log.DefaultStyles()

	s.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(ui.ColorWarning)
	s.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(ui.ColorError)
	s.Keys["day"] = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	s.Values["day"] = lipgloss.NewStyle().Bold(true)
	s.Keys["error"] = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	s.Values["error"] = lipgloss.NewStyle().Bold(true)
	return s
}
