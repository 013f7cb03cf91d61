package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/generator"
	"github.com/willfong/incremental-datagen/internal/ui"
	"github.com/willfong/incremental-datagen/internal/utils"
	"github.com/willfong/incremental-datagen/internal/validate"
)

var (
	startDate string
	noRename  bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate three days of incremental transaction files",
	Long: `Generate day1/day2/day3 transaction files with injected defects.

Rows are split per day into a clean bucket and defect buckets:
  Day 1  clean only
  Day 2  late-arriving (event on day 1) and NULL updated_at
  Day 3  merchant renamed to legal name and +10:30 timezone skew

Files are written to a new folder named after the run time and row
counts, then renamed to carry the total size, e.g.
  incremental_data_Nov10_2025_13h07m_15K+15K+15K_7_60MB

A validation report is written beside the files.

Example:
  datagen generate
  datagen generate --seed 7 --rows 1000
  datagen generate --late-pct 0.05 --chart --metrics`,
	Run: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.Int64("seed", config.DefaultSeed, "random seed for reproducibility (0 = random)")
	f.Int("rows", config.DefaultRowsPerDay, "rows per day (sets all three days)")
	f.Int("rows-day1", config.DefaultRowsPerDay, "rows for day 1")
	f.Int("rows-day2", config.DefaultRowsPerDay, "rows for day 2")
	f.Int("rows-day3", config.DefaultRowsPerDay, "rows for day 3")
	f.Float64("late-pct", config.DefaultLateArrivingPct, "day 2 fraction of late-arriving rows")
	f.Float64("null-pct", config.DefaultNullUpdatedPct, "day 2 fraction of NULL updated_at rows")
	f.Float64("merchant-pct", config.DefaultMerchantUpdatePct, "day 3 fraction of renamed merchants")
	f.Float64("tz-pct", config.DefaultTimezoneIssuePct, "day 3 fraction of timezone-skewed rows")
	f.Int("customers", config.DefaultNumCustomers, "number of distinct customers")
	f.Int("merchants", config.DefaultNumMerchants, "number of distinct merchants")
	f.StringVar(&startDate, "start-date", "", "day 1 date (YYYY-MM-DD); days 2 and 3 follow")
	f.String("output", config.DefaultOutputRoot, "directory the output folder is created in")
	f.String("prefix", config.DefaultOutputPrefix, "output folder name prefix")
	f.Bool("compress", false, "compress day files with xz (.csv.xz)")
	f.Bool("chart", false, "write defect_summary.png")
	f.Bool("metrics", false, "write generation_metrics.prom")
	f.BoolVar(&noRename, "no-rename", false, "keep the folder name without the size suffix")

	for flag, key := range map[string]string{
		"seed":         "seed",
		"rows-day1":    "rows.day1",
		"rows-day2":    "rows.day2",
		"rows-day3":    "rows.day3",
		"late-pct":     "defects.late_arriving_pct",
		"null-pct":     "defects.null_updated_pct",
		"merchant-pct": "defects.merchant_update_pct",
		"tz-pct":       "defects.timezone_issue_pct",
		"customers":    "entities.num_customers",
		"merchants":    "entities.num_merchants",
		"output":       "output.root",
		"prefix":       "output.prefix",
		"compress":     "output.compress",
		"chart":        "output.chart",
		"metrics":      "output.metrics",
	} {
		mustBind(v.BindPFlag(key, f.Lookup(flag)))
	}
}

// applyGenerateOverrides handles flags that set several keys at once
func applyGenerateOverrides(cmd *cobra.Command) error {
	if cmd.Flags().Changed("rows") {
		rows, _ := cmd.Flags().GetInt("rows")
		for day := 1; day <= 3; day++ {
			if !cmd.Flags().Changed(fmt.Sprintf("rows-day%d", day)) {
				v.Set(fmt.Sprintf("rows.day%d", day), rows)
			}
		}
	}

	if startDate != "" {
		dates, err := consecutiveDates(startDate)
		if err != nil {
			return err
		}
		for i, d := range dates {
			v.Set(fmt.Sprintf("dates.day%d", i+1), d)
		}
	}

	if noRename {
		v.Set("output.rename", false)
	}
	return nil
}

// consecutiveDates returns start and the two following days
func consecutiveDates(start string) ([]string, error) {
	day1, err := time.Parse(config.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: --start-date must be YYYY-MM-DD (got %q)", config.ErrInvalidConfig, start)
	}
	return []string{
		day1.Format(config.DateLayout),
		day1.AddDate(0, 0, 1).Format(config.DateLayout),
		day1.AddDate(0, 0, 2).Format(config.DateLayout),
	}, nil
}

func runGenerate(cmd *cobra.Command, args []string) {
	u := newUI()

	if err := applyGenerateOverrides(cmd); err != nil {
		fail(u, "Invalid configuration", err)
	}
	cfg, logger := setup(u)

	if cfg.Output.Compress {
		if err := csvio.CheckXZAvailable(); err != nil {
			fail(u, "xz compression requested but xz is not available", err)
		}
	}

	printGenerateHeader(u, cfg)

	bars := make(map[int]*ui.ProgressBar)
	progress := func(day, done, total int) {
		bar, ok := bars[day]
		if !ok {
			bar = u.NewProgressBar(fmt.Sprintf("Day %d", day), int64(total))
			bars[day] = bar
		}
		bar.Update(int64(done))
		if done == total {
			bar.Complete()
		}
	}

	orch, err := generator.NewOrchestrator(*cfg, generator.Options{
		Logger:   logger,
		Progress: progress,
	})
	if err != nil {
		fail(u, "Invalid configuration", err)
	}

	u.Section("Generating...")
	result, err := orch.Run()
	if err != nil {
		fail(u, "Generation failed", err)
	}

	printGenerateResult(u, result)
}

func printGenerateHeader(u *ui.UI, cfg *config.Config) {
	d := cfg.Defects
	u.Print(u.Header("Payment Gateway Incremental Data Generator"))
	u.Print("")
	u.Print(u.KeyValue("Seed", seedLabel(cfg.Seed)))
	u.Print(u.KeyValue("Rows", fmt.Sprintf("%s + %s + %s",
		utils.FormatCount(cfg.Rows.Day1), utils.FormatCount(cfg.Rows.Day2), utils.FormatCount(cfg.Rows.Day3))))
	u.Print(u.KeyValue("Dates", fmt.Sprintf("%s, %s, %s", cfg.Dates.Day1, cfg.Dates.Day2, cfg.Dates.Day3)))
	u.Print(u.KeyValue("Day 2", fmt.Sprintf("late %.2f%%, null updated_at %.2f%%", d.LateArrivingPct*100, d.NullUpdatedPct*100)))
	u.Print(u.KeyValue("Day 3", fmt.Sprintf("merchant rename %.2f%%, timezone %.2f%%", d.MerchantUpdatePct*100, d.TimezoneIssuePct*100)))
	u.Print(u.KeyValue("Entities", fmt.Sprintf("%d customers, %d merchants", cfg.Entities.NumCustomers, cfg.Entities.NumMerchants)))
	u.Print(u.KeyValue("Output", cfg.Output.Root))
	if cfg.Output.Compress {
		u.Print(u.KeyValue("Compress", "xz"))
	}
}

func seedLabel(seed int64) string {
	if seed == 0 {
		return "random"
	}
	return fmt.Sprintf("%d", seed)
}

func printGenerateResult(u *ui.UI, result *generator.GenerationResult) {
	report := result.Report

	u.Section("Per-day statistics")
	validate.RenderDayTable(u.Out, report)

	u.Section("Transaction status")
	validate.RenderStatusTable(u.Out, report)

	u.Section("Injected issues")
	validate.RenderIssueTable(u.Out, report)

	for _, m := range report.Mismatches() {
		u.Print(u.Warning("Detection mismatch: " + m))
	}
	for _, dir := range result.Leftovers {
		u.Print(u.Warning("Leftover folder from an interrupted run: " + dir))
	}

	fmt.Fprintln(u.Out, u.SummaryBox("Generation Complete", []ui.KV{
		{Key: "Status", Value: "Success"},
		{Key: "Run ID", Value: result.RunID},
		{Key: "Seed", Value: fmt.Sprintf("%d", result.Seed)},
		{Key: "Total Rows", Value: utils.FormatCount(report.TotalRows)},
		{Key: "Total Size", Value: utils.FormatFileSize(result.Output.TotalBytes)},
		{Key: "Unique IDs", Value: fmt.Sprintf("%t", report.AllIDsUnique())},
		{Key: "Issue Rows", Value: utils.FormatCount(report.TotalIssueRows())},
		{Key: "Duration", Value: result.Duration.Round(time.Millisecond).String()},
		{Key: "Output", Value: result.Output.Dir},
	}))
}
