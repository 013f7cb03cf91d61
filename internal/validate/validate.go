// Package validate computes statistics over generated day tables and
// detects injected defects by their symptoms, the way a downstream
// consumer of the files would.
package validate

import (
	"fmt"
	"time"

	"github.com/willfong/incremental-datagen/internal/data"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

// maxDuplicateSamples caps how many duplicate ids a report keeps
const maxDuplicateSamples = 10

// DayStats holds everything measured about one day table
type DayStats struct {
	Day  int
	Date time.Time

	Rows                 int
	UniqueTransactionIDs int
	UniqueCustomers      int
	UniqueMerchants      int
	MinTimestamp         time.Time
	MaxTimestamp         time.Time
	NullUpdatedAt        int
	StatusCounts         map[models.TransactionStatus]int
	TotalAmount          utils.Money

	// Symptoms
	EarlyTimestamps  int // transaction_timestamp before the day's date
	LegalEntityNames int // merchant_name contains a legal-entity keyword

	// GroundTruth counts the injected defect tags; never read from files
	GroundTruth map[models.DefectClass]int

	FileName  string
	FileBytes int64
}

// StatusPct returns the share of rows with the given status, in percent
func (s DayStats) StatusPct(status models.TransactionStatus) float64 {
	if s.Rows == 0 {
		return 0
	}
	return float64(s.StatusCounts[status]) / float64(s.Rows) * 100
}

// Report is the result of validating all three days
type Report struct {
	Days []DayStats

	TotalRows            int
	UniqueTransactionIDs int
	CrossDayDuplicates   int
	DuplicateSamples     []string

	// Injected-issue counts as detected from symptoms
	LateArriving    int
	NullUpdatedAt   int
	MerchantUpdates int
	TimezoneIssues  int
}

// Day returns stats for day n, or nil
func (r *Report) Day(n int) *DayStats {
	for i := range r.Days {
		if r.Days[i].Day == n {
			return &r.Days[i]
		}
	}
	return nil
}

// AllIDsUnique reports whether every transaction_id in the corpus is distinct
func (r *Report) AllIDsUnique() bool {
	return r.UniqueTransactionIDs == r.TotalRows
}

// TotalIssueRows sums the four detected issue counts
func (r *Report) TotalIssueRows() int {
	return r.LateArriving + r.NullUpdatedAt + r.MerchantUpdates + r.TimezoneIssues
}

// CleanRows returns a day's rows minus the issues detected on it
func (r *Report) CleanRows(day int) int {
	s := r.Day(day)
	if s == nil {
		return 0
	}
	return s.Rows - s.EarlyTimestamps - s.NullUpdatedAt - s.LegalEntityNames
}

// TotalBytes sums the attached file sizes
func (r *Report) TotalBytes() int64 {
	var total int64
	for _, d := range r.Days {
		total += d.FileBytes
	}
	return total
}

// AttachFile records the persisted file for a day
func (r *Report) AttachFile(day int, name string, bytes int64) {
	if s := r.Day(day); s != nil {
		s.FileName = name
		s.FileBytes = bytes
	}
}

// Mismatches compares every symptom count against the ground-truth tags.
// An empty result means detection and injection agree.
func (r *Report) Mismatches() []string {
	var out []string
	for _, d := range r.Days {
		gt := d.GroundTruth
		checks := []struct {
			what     string
			detected int
			expected int
		}{
			{"early transaction_timestamp", d.EarlyTimestamps, gt[models.DefectLateArriving] + gt[models.DefectTimezoneSkew]},
			{"NULL updated_at", d.NullUpdatedAt, gt[models.DefectNullUpdatedAt]},
			{"legal-entity merchant_name", d.LegalEntityNames, gt[models.DefectMerchantUpdate]},
		}
		for _, c := range checks {
			if c.detected != c.expected {
				out = append(out, fmt.Sprintf("day %d %s: detected %d, injected %d", d.Day, c.what, c.detected, c.expected))
			}
		}
	}
	if r.CrossDayDuplicates > 0 {
		out = append(out, fmt.Sprintf("%d transaction_id values repeat across days", r.CrossDayDuplicates))
	}
	return out
}

// Validator analyzes day tables
type Validator struct {
	legalKeywords []string
}

// NewValidator creates a validator that flags merchant names containing
// any of legalKeywords.
func NewValidator(legalKeywords []string) *Validator {
	return &Validator{legalKeywords: legalKeywords}
}

// Analyze computes per-day statistics, cross-day duplicates and the
// symptom-detected issue counts.
func (v *Validator) Analyze(days []models.DayTable) *Report {
	report := &Report{Days: make([]DayStats, 0, len(days))}
	seen := make(map[string]struct{})

	for _, d := range days {
		report.Days = append(report.Days, v.dayStats(d))
		report.TotalRows += len(d.Records)

		for i := range d.Records {
			id := d.Records[i].TransactionID
			if _, dup := seen[id]; dup {
				report.CrossDayDuplicates++
				if len(report.DuplicateSamples) < maxDuplicateSamples {
					report.DuplicateSamples = append(report.DuplicateSamples, id)
				}
				continue
			}
			seen[id] = struct{}{}
		}
	}
	report.UniqueTransactionIDs = len(seen)

	if s := report.Day(2); s != nil {
		report.LateArriving = s.EarlyTimestamps
		report.NullUpdatedAt = s.NullUpdatedAt
	}
	if s := report.Day(3); s != nil {
		report.MerchantUpdates = s.LegalEntityNames
		report.TimezoneIssues = s.EarlyTimestamps
	}

	return report
}

func (v *Validator) dayStats(d models.DayTable) DayStats {
	stats := DayStats{
		Day:          d.Day,
		Date:         d.Date,
		Rows:         len(d.Records),
		StatusCounts: make(map[models.TransactionStatus]int, len(models.AllStatuses)),
		GroundTruth:  make(map[models.DefectClass]int),
	}

	ids := make(map[string]struct{}, len(d.Records))
	customers := make(map[string]struct{})
	merchants := make(map[string]struct{})

	for i := range d.Records {
		rec := &d.Records[i]

		ids[rec.TransactionID] = struct{}{}
		customers[rec.CustomerID] = struct{}{}
		merchants[rec.MerchantID] = struct{}{}

		ts := rec.TransactionTimestamp
		if i == 0 || ts.Before(stats.MinTimestamp) {
			stats.MinTimestamp = ts
		}
		if i == 0 || ts.After(stats.MaxTimestamp) {
			stats.MaxTimestamp = ts
		}
		if ts.Before(d.Date) {
			stats.EarlyTimestamps++
		}
		if rec.UpdatedAt == nil {
			stats.NullUpdatedAt++
		}
		if data.ContainsAny(rec.MerchantName, v.legalKeywords) {
			stats.LegalEntityNames++
		}

		stats.StatusCounts[rec.Status]++
		stats.TotalAmount += rec.Amount
		stats.GroundTruth[rec.Defect]++
	}

	stats.UniqueTransactionIDs = len(ids)
	stats.UniqueCustomers = len(customers)
	stats.UniqueMerchants = len(merchants)
	return stats
}
