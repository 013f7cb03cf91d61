// Package revalidate reads persisted day files back and reports their row
// counts, timestamp bounds and empty updated_at fields. It only depends on
// the file format, not on anything the generator keeps in memory.
package revalidate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

// ErrDayFileNotFound is returned when a day file is missing from the folder
var ErrDayFileNotFound = fmt.Errorf("day file not found: %w", fs.ErrNotExist)

// Days are the day numbers every output folder holds
var Days = []int{1, 2, 3}

// FileSummary is what the check reports for one file
type FileSummary struct {
	Day           int
	Path          string
	Bytes         int64
	Rows          int
	MinTimestamp  time.Time
	MaxTimestamp  time.Time
	NullUpdatedAt int
}

// Check reads day 1, 2 and 3 from dir. It stops at the first missing or
// unreadable file.
func Check(dir string) ([]FileSummary, error) {
	summaries := make([]FileSummary, 0, len(Days))
	for _, day := range Days {
		path, err := csvio.ResolveDayFile(dir, models.DayFileBase(day))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrDayFileNotFound, filepath.Join(dir, models.DayFileBase(day)+csvio.Ext))
			}
			return nil, err
		}

		summary, err := ReadDayFile(day, path)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ReadDayFile scans one file, plain or xz-compressed
func ReadDayFile(day int, path string) (FileSummary, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileSummary{}, fmt.Errorf("%w: %s", ErrDayFileNotFound, path)
		}
		return FileSummary{}, err
	}

	r, err := csvio.Open(path)
	if err != nil {
		return FileSummary{}, err
	}
	defer r.Close()

	tsCol, ok := r.Index("transaction_timestamp")
	if !ok {
		return FileSummary{}, fmt.Errorf("%s: missing transaction_timestamp column", path)
	}
	updCol, ok := r.Index("updated_at")
	if !ok {
		return FileSummary{}, fmt.Errorf("%s: missing updated_at column", path)
	}

	summary := FileSummary{Day: day, Path: path, Bytes: info.Size()}
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return FileSummary{}, err
		}

		ts, err := time.Parse(csvio.TimestampLayout, row[tsCol])
		if err != nil {
			return FileSummary{}, fmt.Errorf("%s: row %d: %w", path, summary.Rows+1, err)
		}
		if summary.Rows == 0 || ts.Before(summary.MinTimestamp) {
			summary.MinTimestamp = ts
		}
		if summary.Rows == 0 || ts.After(summary.MaxTimestamp) {
			summary.MaxTimestamp = ts
		}
		if row[updCol] == "" {
			summary.NullUpdatedAt++
		}
		summary.Rows++
	}
	return summary, nil
}

// Render prints the summaries in the order they were read
func Render(w io.Writer, summaries []FileSummary) {
	for _, s := range summaries {
		fmt.Fprintf(w, "\n=== DAY %d ===\n", s.Day)
		fmt.Fprintf(w, "File: %s (%s)\n", s.Path, utils.FormatFileSize(s.Bytes))
		fmt.Fprintf(w, "Rows: %s\n", utils.FormatCount(s.Rows))
		if s.Rows > 0 {
			fmt.Fprintf(w, "Min transaction_timestamp: %s\n", csvio.FormatTime(s.MinTimestamp))
			fmt.Fprintf(w, "Max transaction_timestamp: %s\n", csvio.FormatTime(s.MaxTimestamp))
		}
		fmt.Fprintf(w, "NULL updated_at: %s\n", utils.FormatCount(s.NullUpdatedAt))
	}
}
