package validate

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

// RenderDayTable writes the per-day statistics table
func RenderDayTable(w io.Writer, r *Report) {
	table := newTable(w, []string{
		"Day", "Date", "Rows", "Unique IDs", "Customers", "Merchants",
		"Min transaction_timestamp", "Max transaction_timestamp", "NULL updated_at", "File Size",
	})

	for _, d := range r.Days {
		size := "-"
		if d.FileName != "" {
			size = utils.FormatFileSize(d.FileBytes)
		}
		table.Append([]string{
			fmt.Sprintf("%d", d.Day),
			d.Date.Format("2006-01-02"),
			utils.FormatCount(d.Rows),
			utils.FormatCount(d.UniqueTransactionIDs),
			utils.FormatCount(d.UniqueCustomers),
			utils.FormatCount(d.UniqueMerchants),
			formatBound(d.MinTimestamp, d.Rows),
			formatBound(d.MaxTimestamp, d.Rows),
			utils.FormatCount(d.NullUpdatedAt),
			size,
		})
	}

	table.Render()
}

// RenderStatusTable writes the status distribution per day
func RenderStatusTable(w io.Writer, r *Report) {
	header := []string{"Day"}
	for _, s := range models.AllStatuses {
		header = append(header, string(s))
	}
	table := newTable(w, header)

	for _, d := range r.Days {
		row := []string{fmt.Sprintf("%d", d.Day)}
		for _, s := range models.AllStatuses {
			row = append(row, fmt.Sprintf("%s (%.1f%%)", utils.FormatCount(d.StatusCounts[s]), d.StatusPct(s)))
		}
		table.Append(row)
	}

	table.Render()
}

// IssueRow is one line of the injected-issue summary
type IssueRow struct {
	Name     string
	Day      int
	Detected int
	Injected int
}

// Issues lists the four defect classes with detected and injected counts
func (r *Report) Issues() []IssueRow {
	var rows []IssueRow
	if d := r.Day(2); d != nil {
		rows = append(rows,
			IssueRow{"Late-Arriving Data", 2, r.LateArriving, d.GroundTruth[models.DefectLateArriving]},
			IssueRow{"NULL updated_at", 2, r.NullUpdatedAt, d.GroundTruth[models.DefectNullUpdatedAt]},
		)
	}
	if d := r.Day(3); d != nil {
		rows = append(rows,
			IssueRow{"Merchant Updates", 3, r.MerchantUpdates, d.GroundTruth[models.DefectMerchantUpdate]},
			IssueRow{"Timezone Issues", 3, r.TimezoneIssues, d.GroundTruth[models.DefectTimezoneSkew]},
		)
	}
	return rows
}

// RenderIssueTable writes detected vs injected counts for each defect class
func RenderIssueTable(w io.Writer, r *Report) {
	table := newTable(w, []string{"Issue", "Day", "Detected", "Injected", "Check"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
	})

	for _, issue := range r.Issues() {
		check := "ok"
		if issue.Detected != issue.Injected {
			check = "MISMATCH"
		}
		table.Append([]string{
			issue.Name,
			fmt.Sprintf("%d", issue.Day),
			utils.FormatCount(issue.Detected),
			utils.FormatCount(issue.Injected),
			check,
		})
	}
	table.SetFooter([]string{"Total", "", utils.FormatCount(r.TotalIssueRows()), "", ""})

	table.Render()
}

func formatBound(t time.Time, rows int) string {
	if rows == 0 {
		return "-"
	}
	return t.Format(csvio.TimestampLayout)
}
