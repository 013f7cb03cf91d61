package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	u := NewPlain(&buf)

	assert.Equal(t, "=== Generate ===", u.Header("Generate"))
	assert.Equal(t, "[OK] done", u.Success("done"))
	assert.Equal(t, "[WARN] careful", u.Warning("careful"))
	assert.Equal(t, "[FAILED] broken", u.Error("broken"))

	box := u.SummaryBox("Summary", []KV{{"Rows", "45,000"}, {"Status", "Success"}})
	assert.Contains(t, box, "=== Summary ===")
	assert.Regexp(t, `Rows:\s+45,000`, box)

	u.Section("Import")
	u.PrintLoadResult("raw_transactions_day1", 15000, 1500*time.Millisecond, nil)
	u.PrintLoadResult("raw_transactions_day2", 0, 0, errors.New("boom"))
	u.PrintSkipped("raw_transactions_day3", "file missing")

	out := buf.String()
	assert.Contains(t, out, "\nImport\n")
	assert.Contains(t, out, "15.0K rows in 1.5s")
	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, "SKIPPED (file missing)")
}

func TestProgressBarPlainQuarters(t *testing.T) {
	var buf bytes.Buffer
	u := NewPlain(&buf)

	bar := u.NewProgressBar("Day 1", 100)
	for i := int64(10); i <= 100; i += 10 {
		bar.Update(i)
	}
	bar.Complete()

	out := buf.String()
	assert.Contains(t, out, "Day 1: 25% (30/100)")
	assert.Contains(t, out, "Day 1: 50% (50/100)")
	assert.Contains(t, out, "Day 1: 75% (80/100)")
	assert.NotContains(t, out, "100%")
	assert.Contains(t, out, "Day 1: 100 rows done")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "2.5s", formatDuration(2500*time.Millisecond))
	assert.Equal(t, "3m5s", formatDuration(185*time.Second))
	assert.Equal(t, "1h2m", formatDuration(62*time.Minute))
	assert.Equal(t, "1.5M", formatRowCount(1_500_000))
}
