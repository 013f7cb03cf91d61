package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/database"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/ui"
	"github.com/willfong/incremental-datagen/internal/utils"
)

var (
	importTruncate bool
	importIndexes  bool
)

var importCmd = &cobra.Command{
	Use:   "import <folder>",
	Short: "Load day files into MySQL/MariaDB landing tables",
	Long: `Load a generated folder into raw_transactions_day1..3 using
LOAD DATA LOCAL INFILE. Plain .csv and .csv.xz files are accepted.

The import process:
1. Creates the landing tables if they don't exist
2. Optionally truncates them (--truncate)
3. Loads day 1, 2 and 3 in order, empty updated_at as NULL
4. Optionally adds indexes afterwards (--indexes)

Examples:
  datagen import ./incremental_data_... --db "user:pass@tcp(localhost:3306)/dw"
  DATAGEN_DATABASE_DSN="user:pass@tcp(db:3306)/dw" datagen import ./out --truncate`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	f := importCmd.Flags()
	f.String("db", "", "database connection string, user:pass@tcp(host:port)/db")
	f.Int("db-max-open", 0, "max open database connections")
	f.String("table-prefix", "", "landing table prefix")
	f.BoolVar(&importTruncate, "truncate", false, "empty each table before loading and verify row counts")
	f.BoolVar(&importIndexes, "indexes", false, "create indexes after loading")

	mustBind(v.BindPFlag("database.dsn", f.Lookup("db")))
	mustBind(v.BindPFlag("database.max_open_conns", f.Lookup("db-max-open")))
	mustBind(v.BindPFlag("database.table_prefix", f.Lookup("table-prefix")))
}

func runImport(cmd *cobra.Command, args []string) {
	u := newUI()
	cfg, logger := setup(u)
	dir := args[0]

	if cfg.Database.DSN == "" {
		fail(u, "No database given", errors.New("set --db or DATAGEN_DATABASE_DSN"))
	}

	u.Print(u.Header("Warehouse Import"))
	u.Print("")
	u.Print(u.KeyValue("Database", database.MaskDSN(cfg.Database.DSN)))
	u.Print(u.KeyValue("Input", dir))
	u.Print(u.KeyValue("Tables", database.TableName(cfg.Database.TablePrefix, 1)+" .. 3"))
	u.Print("")

	files, err := resolveImportFiles(dir)
	if err != nil {
		fail(u, "Input folder is incomplete", err)
	}

	pool, err := database.NewPool(cfg.Database)
	if err != nil {
		fail(u, "Opening database", err)
	}
	defer pool.Close()

	ctx := context.Background()
	spin := u.NewSpinner("Connecting to database")
	spin.Start()
	if err := pool.Connect(ctx); err != nil {
		spin.Error("connection failed")
		fail(u, "Connecting to database", err)
	}
	spin.Success("connected!")

	loader := database.NewLoader(pool, cfg.Database.TablePrefix, logger)
	days := []int{1, 2, 3}

	spinTables := u.NewSpinner("Creating tables")
	spinTables.Start()
	if err := loader.CreateTables(ctx, days); err != nil {
		spinTables.Error("failed")
		fail(u, "Creating tables", err)
	}
	spinTables.Success("tables ready")

	u.Section("Loading data...")
	start := time.Now()
	var loaded int64
	for _, day := range days {
		if importTruncate {
			if err := loader.Truncate(ctx, day); err != nil {
				fail(u, "Truncating table", err)
			}
		}

		result := loader.LoadDay(ctx, day, files[day])
		u.PrintLoadResult(result.Table, result.Rows, result.Duration, result.Err)
		if result.Err != nil {
			fmt.Fprintln(os.Stderr, u.Muted(manualLoadHint(files[day], result.Table)))
			fail(u, "Import stopped due to error", nil)
		}
		loaded += result.Rows

		if importTruncate {
			n, err := loader.CountRows(ctx, day)
			if err != nil {
				fail(u, "Verifying row count", err)
			}
			if n != result.Rows {
				u.Print(u.Warning(fmt.Sprintf("%s holds %d rows, loaded %d", result.Table, n, result.Rows)))
			}
		}
	}
	loadDuration := time.Since(start)

	if importIndexes {
		spinIdx := u.NewSpinner("Creating indexes")
		spinIdx.Start()
		if err := loader.CreateIndexes(ctx, days); err != nil {
			spinIdx.Error("failed")
			fail(u, "Creating indexes", err)
		}
		spinIdx.Success("done")
	}

	stats := pool.Stats()
	fmt.Fprintln(u.Out, u.SummaryBox("Import Complete", []ui.KV{
		{Key: "Status", Value: "Success"},
		{Key: "Rows", Value: utils.FormatCount(int(loaded))},
		{Key: "Load Time", Value: loadDuration.Round(time.Millisecond).String()},
		{Key: "Total Time", Value: ui.DurationSince(start)},
		{Key: "Statements", Value: fmt.Sprintf("%d (%d failed)", stats.TotalQueries, stats.FailedQueries)},
	}))
}

// resolveImportFiles finds all three day files before anything is loaded
func resolveImportFiles(dir string) (map[int]string, error) {
	files := make(map[int]string, 3)
	needXZ := false
	for day := 1; day <= 3; day++ {
		path, err := csvio.ResolveDayFile(dir, models.DayFileBase(day))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("day %d file not found in %s", day, dir)
			}
			return nil, err
		}
		files[day] = path
		needXZ = needXZ || strings.HasSuffix(path, ".xz")
	}
	if needXZ {
		if err := csvio.CheckXZAvailable(); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func manualLoadHint(path, table string) string {
	return fmt.Sprintf("    To debug manually, run in the mysql client with --local-infile=1:\n%s",
		indent(database.LoadStatement(table, path), "    "))
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
