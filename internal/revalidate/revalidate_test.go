package revalidate

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/models"
)

func writeDay(t *testing.T, dir string, day int, rows [][2]string) {
	t.Helper()
	w, err := csvio.NewWriter(csvio.WriterConfig{
		OutputDir: dir,
		Filename:  models.DayFileBase(day),
		Headers:   models.Columns,
	})
	require.NoError(t, err)
	for i, r := range rows {
		row := make([]string, len(models.Columns))
		row[0] = models.DayFileBase(day) + string(rune('a'+i))
		row[2] = r[0]
		row[16] = r[1]
		require.NoError(t, w.WriteRow(row))
	}
	require.NoError(t, w.Close())
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, 1, [][2]string{
		{"2024-11-01 08:00:00", "2024-11-01 08:00:00"},
		{"2024-11-01 23:59:59", "2024-11-01 23:59:59"},
	})
	writeDay(t, dir, 2, [][2]string{
		{"2024-11-01 22:10:00", "2024-11-02 01:00:00"},
		{"2024-11-02 12:00:00", ""},
		{"2024-11-02 13:00:00", ""},
	})
	writeDay(t, dir, 3, nil)

	summaries, err := Check(dir)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, 2, summaries[0].Rows)
	assert.Equal(t, "2024-11-01 23:59:59", csvio.FormatTime(summaries[0].MaxTimestamp))

	assert.Equal(t, 3, summaries[1].Rows)
	assert.Equal(t, 2, summaries[1].NullUpdatedAt)
	assert.Equal(t, "2024-11-01 22:10:00", csvio.FormatTime(summaries[1].MinTimestamp))

	assert.Equal(t, 0, summaries[2].Rows)
	assert.Positive(t, summaries[2].Bytes)

	var buf bytes.Buffer
	Render(&buf, summaries)
	out := buf.String()
	assert.Contains(t, out, "=== DAY 2 ===")
	assert.Contains(t, out, "NULL updated_at: 2")
	assert.Contains(t, out, "Min transaction_timestamp: 2024-11-01 22:10:00")
}

func TestCheckMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, 1, nil)

	_, err := Check(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDayFileNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "day2_transactions.csv")
}

func TestCheckMissingFolder(t *testing.T) {
	_, err := Check(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadDayFileBadTimestamp(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, 1, [][2]string{{"11/01/2024", ""}})

	_, err := ReadDayFile(1, filepath.Join(dir, "day1_transactions.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestReadDayFileMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day1_transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte("transaction_id\nTXN_1\n"), 0644))

	_, err := ReadDayFile(1, path)
	assert.ErrorContains(t, err, "missing transaction_timestamp")
}
