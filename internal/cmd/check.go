package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willfong/incremental-datagen/internal/revalidate"
	"github.com/willfong/incremental-datagen/internal/ui"
	"github.com/willfong/incremental-datagen/internal/utils"
)

// checkCmd re-reads a generated folder
var checkCmd = &cobra.Command{
	Use:   "check <folder>",
	Short: "Re-read day files and print row counts and timestamp bounds",
	Long: `Read day1/day2/day3 transaction files from a generated folder and
print, per file, the row count, the earliest and latest
transaction_timestamp and the number of empty updated_at values.

Plain .csv and xz-compressed .csv.xz files are both accepted. A missing
file stops the check with an error.

Example:
  datagen check ./incremental_data_Nov10_2025_13h07m_15K+15K+15K_7_60MB`,
	Args: cobra.ExactArgs(1),
	Run:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	u := newUI()
	_, logger := setup(u)
	dir := args[0]

	u.Print(u.Header("Checking transaction files"))
	u.Print(u.KeyValue("Folder", dir))

	spin := u.NewSpinner("Reading day files")
	spin.Start()
	summaries, err := revalidate.Check(dir)
	if err != nil {
		if errors.Is(err, revalidate.ErrDayFileNotFound) {
			spin.Error("file not found")
		} else {
			spin.Error("failed")
		}
		fail(u, "Check failed", err)
	}
	spin.Success(fmt.Sprintf("%d files", len(summaries)))

	revalidate.Render(u.Out, summaries)

	total := 0
	for _, s := range summaries {
		total += s.Rows
		logger.Debug("checked day file", "day", s.Day, "path", s.Path, "rows", s.Rows)
	}
	fmt.Fprintln(u.Out, u.SummaryBox("Check Complete", []ui.KV{
		{Key: "Status", Value: "Success"},
		{Key: "Files", Value: fmt.Sprintf("%d", len(summaries))},
		{Key: "Total Rows", Value: utils.FormatCount(total)},
	}))
}
