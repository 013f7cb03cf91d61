package validate

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

// ReportFileName is the plain-text report written beside the day files
const ReportFileName = "validation_report.txt"

// ReportMeta describes the run a report belongs to
type ReportMeta struct {
	RunID       string
	Seed        uint64
	GeneratedAt time.Time
	OutputDir   string
	Config      config.Config
}

// WriteReport renders the full validation report as plain text
func WriteReport(w io.Writer, r *Report, meta ReportMeta) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", 70)
	cfg := meta.Config

	p := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	p(rule)
	p("PAYMENT GATEWAY INCREMENTAL DATA - VALIDATION REPORT")
	p(rule)
	p("")
	if meta.RunID != "" {
		p("Run ID: %s", meta.RunID)
	}
	p("Generation Time: %s", meta.GeneratedAt.Format(csvio.TimestampLayout))
	p("Seed: %d", meta.Seed)
	p("Total Rows: %s", utils.FormatCount(r.TotalRows))
	p("Total Size: %s", utils.FormatFileSize(r.TotalBytes()))
	if meta.OutputDir != "" {
		p("Output Location: %s", meta.OutputDir)
	}
	p("")

	p("=== CONFIGURATION ===")
	p("rows.day1: %s", utils.FormatCount(cfg.Rows.Day1))
	p("rows.day2: %s", utils.FormatCount(cfg.Rows.Day2))
	p("rows.day3: %s", utils.FormatCount(cfg.Rows.Day3))
	p("entities.num_customers: %d", cfg.Entities.NumCustomers)
	p("entities.num_merchants: %d", cfg.Entities.NumMerchants)
	p("defects.late_arriving_pct: %.4f", cfg.Defects.LateArrivingPct)
	p("defects.null_updated_pct: %.4f", cfg.Defects.NullUpdatedPct)
	p("defects.merchant_update_pct: %.4f", cfg.Defects.MerchantUpdatePct)
	p("defects.timezone_issue_pct: %.4f", cfg.Defects.TimezoneIssuePct)
	p("dates: %s, %s, %s", cfg.Dates.Day1, cfg.Dates.Day2, cfg.Dates.Day3)
	p("")

	for _, d := range r.Days {
		p("=== DAY %d ===", d.Day)
		p("Date: %s", d.Date.Format(config.DateLayout))
		p("Total Rows: %s", utils.FormatCount(d.Rows))
		if d.FileName != "" {
			p("File: %s", d.FileName)
			p("File Size: %s", utils.FormatFileSize(d.FileBytes))
		}
		p("Unique transaction_id: %s", utils.FormatCount(d.UniqueTransactionIDs))
		p("Unique customer_id: %s", utils.FormatCount(d.UniqueCustomers))
		p("Unique merchant_id: %s", utils.FormatCount(d.UniqueMerchants))
		p("Date Range: %s to %s", formatBound(d.MinTimestamp, d.Rows), formatBound(d.MaxTimestamp, d.Rows))
		p("NULL updated_at: %s", utils.FormatCount(d.NullUpdatedAt))
		p("Total Amount: %s", d.TotalAmount.Format("INR"))
		p("Transaction Status Distribution:")
		for _, s := range models.AllStatuses {
			p("  - %s: %s (%.1f%%)", s, utils.FormatCount(d.StatusCounts[s]), d.StatusPct(s))
		}
		switch d.Day {
		case 2:
			p("Late-Arriving Rows: %s", utils.FormatCount(r.LateArriving))
			p("Clean Rows: %s", utils.FormatCount(r.CleanRows(2)))
		case 3:
			p("Merchant Update Rows: %s", utils.FormatCount(r.MerchantUpdates))
			p("Timezone Issue Rows: %s", utils.FormatCount(r.TimezoneIssues))
			p("Clean Rows: %s", utils.FormatCount(r.CleanRows(3)))
		}
		p("")
	}

	p("=== CROSS-DAY CHECKS ===")
	p("All transaction_ids unique: %t", r.AllIDsUnique())
	p("Duplicate transaction_ids across days: %d", r.CrossDayDuplicates)
	if len(r.DuplicateSamples) > 0 {
		p("Sample duplicates: %s", strings.Join(r.DuplicateSamples, ", "))
	}
	p("")

	p("=== DATA QUALITY ISSUES ===")
	for i, issue := range r.Issues() {
		p("%d. %s (Day %d): %s rows", i+1, issue.Name, issue.Day, utils.FormatCount(issue.Detected))
	}
	p("Total Issue Rows: %s", utils.FormatCount(r.TotalIssueRows()))
	if mismatches := r.Mismatches(); len(mismatches) > 0 {
		p("")
		p("Detection mismatches:")
		for _, m := range mismatches {
			p("  - %s", m)
		}
	}
	p("")

	p("=== PER-DAY SUMMARY ===")
	RenderDayTable(bw, r)

	return bw.Flush()
}
