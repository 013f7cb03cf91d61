package generator

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/validate"
)

func testConfig(root string) config.Config {
	cfg := *config.DefaultConfig()
	cfg.Rows = config.RowsConfig{Day1: 300, Day2: 300, Day3: 300}
	cfg.Output.Root = root
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runOnce(t *testing.T, cfg config.Config) *GenerationResult {
	t.Helper()
	o, err := NewOrchestrator(cfg, Options{
		Logger: quietLogger(),
		Now:    func() time.Time { return stamp },
	})
	require.NoError(t, err)

	result, err := o.Run()
	require.NoError(t, err)
	return result
}

func TestNewOrchestratorRejectsOverfullDay(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	cfg.Defects.LateArrivingPct = 0.7
	cfg.Defects.NullUpdatedPct = 0.7

	_, err := NewOrchestrator(cfg, Options{Logger: quietLogger()})
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Output.Chart = true
	cfg.Output.Metrics = true

	result := runOnce(t, cfg)

	assert.Equal(t, uint64(42), result.Seed)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Days, 3)

	report := result.Report
	assert.Equal(t, 900, report.TotalRows)
	assert.True(t, report.AllIDsUnique())
	assert.Empty(t, report.Mismatches())
	assert.Equal(t, result.Plans[1].Count(models.DefectLateArriving), report.LateArriving)
	assert.Equal(t, result.Plans[1].Count(models.DefectNullUpdatedAt), report.NullUpdatedAt)
	assert.Equal(t, result.Plans[2].Count(models.DefectMerchantUpdate), report.MerchantUpdates)
	assert.Equal(t, result.Plans[2].Count(models.DefectTimezoneSkew), report.TimezoneIssues)
	assert.Equal(t, 3, report.LateArriving)
	assert.Equal(t, 6, report.MerchantUpdates)

	out := result.Output
	assert.True(t, out.Renamed)
	assert.True(t, strings.HasPrefix(filepath.Base(out.Dir), "incremental_data_Nov10_2025_13h07m_0K+0K+0K_"))
	assert.Equal(t, out.TotalBytes, report.TotalBytes())

	for _, name := range []string{validate.ReportFileName, validate.ChartFileName, MetricsFileName} {
		assert.FileExists(t, filepath.Join(out.Dir, name))
	}

	text, err := os.ReadFile(filepath.Join(out.Dir, validate.ReportFileName))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Run ID: "+result.RunID)

	prom, err := os.ReadFile(filepath.Join(out.Dir, MetricsFileName))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `datagen_rows_generated_total{day="2"} 300`)
}

func TestRunRoundTripsThroughReader(t *testing.T) {
	result := runOnce(t, testConfig(t.TempDir()))

	for i, f := range result.Output.Files {
		r, err := csvio.Open(f.Path)
		require.NoError(t, err)
		assert.Equal(t, models.Columns, r.Header())

		for _, rec := range result.Days[i].Records {
			row, err := r.Next()
			require.NoError(t, err)
			assert.Equal(t, transactionRow(&rec), row)
		}
		_, err = r.Next()
		assert.ErrorIs(t, err, io.EOF)
		require.NoError(t, r.Close())
	}
}

func TestRunIsByteIdentical(t *testing.T) {
	a := runOnce(t, testConfig(t.TempDir()))
	b := runOnce(t, testConfig(t.TempDir()))

	assert.NotEqual(t, a.RunID, b.RunID)
	require.Len(t, b.Output.Files, len(a.Output.Files))
	for i := range a.Output.Files {
		left, err := os.ReadFile(a.Output.Files[i].Path)
		require.NoError(t, err)
		right, err := os.ReadFile(b.Output.Files[i].Path)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(left, right), "day %d differs", i+1)
	}
}

func TestRunReportsLeftovers(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	stray := filepath.Join(root, PendingFolderName(cfg.Output.Prefix, cfg.Rows, stamp.Add(-time.Hour)))
	require.NoError(t, os.Mkdir(stray, 0755))

	result := runOnce(t, cfg)
	assert.Equal(t, []string{stray}, result.Leftovers)
	assert.DirExists(t, stray)
}

func TestGenerateDaysProgress(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Rows.Day2 = 1200

	last := map[int]int{}
	o, err := NewOrchestrator(cfg, Options{
		Logger:   quietLogger(),
		Progress: func(day, done, total int) { last[day] = done },
	})
	require.NoError(t, err)

	plans, days, err := o.GenerateDays()
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, map[int]int{1: 300, 2: 1200, 3: 300}, last)
	assert.Len(t, days[1].Records, 1200)
}
