package validate

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

var keywords = []string{"Pvt Ltd", "Ltd", "Internet", "Media", "Technologies", "Entertainment", "Retail", "E-Commerce", "Fleet"}

func day(n int) time.Time {
	return time.Date(2024, 11, n, 0, 0, 0, 0, time.UTC)
}

func record(d time.Time, seq int, defect models.DefectClass) models.PaymentTransaction {
	ts := d.Add(12 * time.Hour)
	up := ts
	rec := models.PaymentTransaction{
		TransactionID:        fmt.Sprintf("TXN_%s_%06d", d.Format("20060102"), seq),
		CustomerID:           fmt.Sprintf("USER_%04d", seq%3+1),
		MerchantID:           fmt.Sprintf("MERCH_%04d", seq%2+1),
		MerchantName:         "Flipkart",
		TransactionTimestamp: ts,
		UpdatedAt:            &up,
		Amount:               utils.Rupees(1000),
		Status:               models.StatusSuccessful,
		Defect:               defect,
	}
	switch defect {
	case models.DefectLateArriving:
		rec.TransactionTimestamp = d.Add(-3 * time.Hour)
	case models.DefectNullUpdatedAt:
		rec.UpdatedAt = nil
	case models.DefectMerchantUpdate:
		rec.MerchantName = "Flipkart Internet Pvt Ltd"
	case models.DefectTimezoneSkew:
		rec.TransactionTimestamp = up.Add(-10*time.Hour - 30*time.Minute - 3*time.Hour)
	}
	return rec
}

func table(n int, mix map[models.DefectClass]int, clean int) models.DayTable {
	t := models.DayTable{Day: n, Date: day(n)}
	seq := 0
	add := func(class models.DefectClass, count int) {
		for i := 0; i < count; i++ {
			seq++
			t.Records = append(t.Records, record(t.Date, seq, class))
		}
	}
	add(models.DefectNone, clean)
	for _, class := range models.InjectedDefects {
		add(class, mix[class])
	}
	return t
}

func sampleDays() []models.DayTable {
	return []models.DayTable{
		table(1, nil, 10),
		table(2, map[models.DefectClass]int{models.DefectLateArriving: 2, models.DefectNullUpdatedAt: 3}, 5),
		table(3, map[models.DefectClass]int{models.DefectMerchantUpdate: 4, models.DefectTimezoneSkew: 1}, 5),
	}
}

func TestAnalyzeDetectsSymptoms(t *testing.T) {
	report := NewValidator(keywords).Analyze(sampleDays())

	assert.Equal(t, 30, report.TotalRows)
	assert.Equal(t, 30, report.UniqueTransactionIDs)
	assert.True(t, report.AllIDsUnique())
	assert.Equal(t, 0, report.CrossDayDuplicates)

	assert.Equal(t, 2, report.LateArriving)
	assert.Equal(t, 3, report.NullUpdatedAt)
	assert.Equal(t, 4, report.MerchantUpdates)
	assert.Equal(t, 1, report.TimezoneIssues)
	assert.Equal(t, 10, report.TotalIssueRows())

	assert.Equal(t, 5, report.CleanRows(2))
	assert.Equal(t, 5, report.CleanRows(3))
	assert.Empty(t, report.Mismatches())

	d1 := report.Day(1)
	require.NotNil(t, d1)
	assert.Equal(t, 3, d1.UniqueCustomers)
	assert.Equal(t, 2, d1.UniqueMerchants)
	assert.Equal(t, 0, d1.NullUpdatedAt)
	assert.Equal(t, 10, d1.StatusCounts[models.StatusSuccessful])
	assert.InDelta(t, 100.0, d1.StatusPct(models.StatusSuccessful), 1e-9)
	assert.Equal(t, utils.Rupees(10000), d1.TotalAmount)
	assert.Equal(t, day(1).Add(12*time.Hour), d1.MinTimestamp)

	d2 := report.Day(2)
	assert.True(t, d2.MinTimestamp.Before(day(2)))
}

func TestAnalyzeCrossDayDuplicates(t *testing.T) {
	days := sampleDays()
	// Reuse a day 1 id on day 3
	days[2].Records[0].TransactionID = days[0].Records[4].TransactionID

	report := NewValidator(keywords).Analyze(days)
	assert.Equal(t, 1, report.CrossDayDuplicates)
	assert.False(t, report.AllIDsUnique())
	assert.Equal(t, []string{days[0].Records[4].TransactionID}, report.DuplicateSamples)

	mismatches := report.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0], "repeat across days")
}

func TestMismatchesFlagDisagreement(t *testing.T) {
	days := sampleDays()
	// A clean day 2 row whose name looks like a legal entity
	days[1].Records[0].MerchantName = "Croma Ltd"

	report := NewValidator(keywords).Analyze(days)
	mismatches := report.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0], "day 2 legal-entity merchant_name: detected 1, injected 0")
}

func TestAnalyzeEmptyDay(t *testing.T) {
	days := []models.DayTable{{Day: 1, Date: day(1)}}
	report := NewValidator(keywords).Analyze(days)

	assert.Equal(t, 0, report.TotalRows)
	assert.True(t, report.AllIDsUnique())
	assert.Equal(t, 0.0, report.Day(1).StatusPct(models.StatusFailed))
}

func TestWriteReport(t *testing.T) {
	report := NewValidator(keywords).Analyze(sampleDays())
	report.AttachFile(1, "day1_transactions.csv", 2048)
	report.AttachFile(2, "day2_transactions.csv", 1024)
	report.AttachFile(3, "day3_transactions.csv", 1024)

	var buf bytes.Buffer
	err := WriteReport(&buf, report, ReportMeta{
		RunID:       "run-1",
		Seed:        42,
		GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Config:      *config.DefaultConfig(),
	})
	require.NoError(t, err)

	text := buf.String()
	for _, want := range []string{
		"PAYMENT GATEWAY INCREMENTAL DATA - VALIDATION REPORT",
		"Generation Time: 2025-01-02 03:04:05",
		"Total Rows: 30",
		"Total Size: 4.00KB",
		"=== CONFIGURATION ===",
		"rows.day1: 15,000",
		"=== DAY 1 ===",
		"=== DAY 2 ===",
		"Late-Arriving Rows: 2",
		"=== DAY 3 ===",
		"Timezone Issue Rows: 1",
		"All transaction_ids unique: true",
		"=== DATA QUALITY ISSUES ===",
		"3. Merchant Updates (Day 3): 4 rows",
		"Total Issue Rows: 10",
	} {
		assert.True(t, strings.Contains(text, want), "report missing %q", want)
	}
	assert.NotContains(t, text, "Detection mismatches")
}

func TestRenderTables(t *testing.T) {
	report := NewValidator(keywords).Analyze(sampleDays())

	var buf bytes.Buffer
	RenderDayTable(&buf, report)
	RenderStatusTable(&buf, report)
	RenderIssueTable(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "2024-11-02")
	assert.Contains(t, out, "Successful")
	assert.Contains(t, out, "Timezone Issues")
	assert.NotContains(t, out, "MISMATCH")
}

func TestRenderDefectChart(t *testing.T) {
	report := NewValidator(keywords).Analyze(sampleDays())

	var buf bytes.Buffer
	require.NoError(t, RenderDefectChart(&buf, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}
