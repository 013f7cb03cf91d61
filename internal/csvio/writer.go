// Package csvio reads and writes the day files. The generator and the
// standalone checker share it so they agree on the file format.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// TimestampLayout is how every timestamp is rendered in a day file
	TimestampLayout = "2006-01-02 15:04:05"

	// Ext is the plain file extension, XZExt the compressed one
	Ext   = ".csv"
	XZExt = ".csv.xz"
)

// Writer is a buffered CSV writer for one day file, optionally compressed
// through an external xz process.
type Writer struct {
	file       *os.File // Only used for uncompressed output
	xzWriter   *XZWriter
	buffer     *bufio.Writer
	writer     *csv.Writer
	path       string
	rowCount   int64
	closed     bool
	compressed bool
}

// WriterConfig holds configuration for creating a Writer
type WriterConfig struct {
	// Directory where the file will be created
	OutputDir string
	// Filename without extension (e.g., "day1_transactions")
	Filename string
	// Column headers
	Headers []string
	// Buffer size in bytes (default: 64KB)
	BufferSize int
	// Enable xz compression (creates .csv.xz files)
	Compress bool
	// XZ compression preset 0-9 (default: 6)
	XZPreset int
}

// NewWriter creates the file and writes the header row
func NewWriter(cfg WriterConfig) (*Writer, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}

	w := &Writer{compressed: cfg.Compress}

	var underlying io.Writer
	if cfg.Compress {
		xw, err := NewXZWriter(cfg.OutputDir, cfg.Filename, cfg.XZPreset)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		w.xzWriter = xw
		w.path = xw.Path()
		underlying = xw
	} else {
		path := filepath.Join(cfg.OutputDir, cfg.Filename+Ext)
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create file %s: %w", path, err)
		}
		w.file = file
		w.path = path
		underlying = file
	}

	w.buffer = bufio.NewWriterSize(underlying, bufSize)
	w.writer = csv.NewWriter(w.buffer)

	if len(cfg.Headers) > 0 {
		if err := w.writer.Write(cfg.Headers); err != nil {
			w.closeUnderlying()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return w, nil
}

// WriteRow writes a single data row
func (w *Writer) WriteRow(row []string) error {
	if w.closed {
		return errors.New("writer is closed")
	}
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.rowCount++
	return nil
}

// Close flushes remaining data and closes the file.
// Always call Close when done writing.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.closeUnderlying()
		return fmt.Errorf("csv flush error: %w", err)
	}
	if err := w.buffer.Flush(); err != nil {
		w.closeUnderlying()
		return fmt.Errorf("buffer flush error: %w", err)
	}
	return w.closeUnderlying()
}

func (w *Writer) closeUnderlying() error {
	if w.compressed {
		return w.xzWriter.Close()
	}
	return w.file.Close()
}

// RowCount returns the number of data rows written (excludes header).
func (w *Writer) RowCount() int64 {
	return w.rowCount
}

// Path returns the full path to the output file (.csv or .csv.xz)
func (w *Writer) Path() string {
	return w.path
}

// FormatTime formats a timestamp the way day files store it
func FormatTime(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatTimePtr formats a *time.Time, returning an empty field for nil
func FormatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTime(*t)
}

// ParseTimePtr is the inverse of FormatTimePtr
func ParseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatInt64 formats an int64 for CSV
func FormatInt64(n int64) string {
	return strconv.FormatInt(n, 10)
}
