package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/models"
)

// LoadResult holds the outcome of loading one day file
type LoadResult struct {
	Day      int
	Table    string
	File     string
	Rows     int64
	Duration time.Duration
	Err      error
}

// Loader moves day files into raw_transactions_dayN tables
type Loader struct {
	pool   *Pool
	prefix string
	logger *slog.Logger
}

// NewLoader creates a loader writing to tables named prefix+day
func NewLoader(pool *Pool, prefix string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{pool: pool, prefix: prefix, logger: logger}
}

// Table returns the table a day loads into
func (l *Loader) Table(day int) string {
	return TableName(l.prefix, day)
}

func (l *Loader) tables(days []int) []string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = l.Table(d)
	}
	return names
}

// CreateTables creates the landing tables if they don't exist
func (l *Loader) CreateTables(ctx context.Context, days []int) error {
	return l.execSchema(ctx, TablesSchema, days, false)
}

// CreateIndexes adds the post-load indexes. Indexes that already exist
// are skipped.
func (l *Loader) CreateIndexes(ctx context.Context, days []int) error {
	return l.execSchema(ctx, IndexesSchema, days, true)
}

func (l *Loader) execSchema(ctx context.Context, file string, days []int, skipDuplicates bool) error {
	sqlText, err := RenderSchema(file, l.tables(days))
	if err != nil {
		return err
	}

	for _, stmt := range SplitStatements(sqlText) {
		if _, err := l.pool.ExecContext(ctx, stmt); err != nil {
			if skipDuplicates && isDuplicateKeyName(err) {
				continue
			}
			return fmt.Errorf("failed to run %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

// isDuplicateKeyName matches MySQL error 1061 (ER_DUP_KEYNAME)
func isDuplicateKeyName(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1061
	}
	return strings.Contains(err.Error(), "Duplicate key name")
}

// Truncate empties a day's table so a reload does not double its rows
func (l *Loader) Truncate(ctx context.Context, day int) error {
	if _, err := l.pool.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE `%s`", l.Table(day))); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", l.Table(day), err)
	}
	return nil
}

// CountRows returns the row count of a day's table
func (l *Loader) CountRows(ctx context.Context, day int) (int64, error) {
	var n int64
	row := l.pool.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", l.Table(day)))
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", l.Table(day), err)
	}
	return n, nil
}

// LoadDay loads one file, decompressing .csv.xz to a temp file first
func (l *Loader) LoadDay(ctx context.Context, day int, path string) LoadResult {
	start := time.Now()
	result := LoadResult{Day: day, Table: l.Table(day), File: path}

	loadPath := path
	if strings.HasSuffix(path, ".xz") {
		tmp, err := decompressToTemp(path, result.Table)
		if err != nil {
			result.Err = err
			return result
		}
		defer os.Remove(tmp)
		loadPath = tmp
	}

	result.Rows, result.Err = l.loadFile(ctx, result.Table, loadPath)
	result.Duration = time.Since(start)
	if result.Err == nil {
		l.logger.Info("loaded day file", "day", day, "table", result.Table, "rows", result.Rows, "elapsed", result.Duration)
	}
	return result
}

func (l *Loader) loadFile(ctx context.Context, table, path string) (int64, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("failed to get absolute path: %w", err)
	}

	mysql.RegisterLocalFile(absPath)
	defer mysql.DeregisterLocalFile(absPath)

	res, err := l.pool.ExecContext(ctx, LoadStatement(table, absPath))
	if err != nil {
		return 0, fmt.Errorf("LOAD DATA into %s failed: %w", table, err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

// LoadStatement builds the LOAD DATA statement for a day file. Empty
// updated_at fields load as NULL.
func LoadStatement(table, path string) string {
	cols := make([]string, len(models.Columns))
	copy(cols, models.Columns)
	for i, c := range cols {
		if c == "updated_at" {
			cols[i] = "@updated_at"
		}
	}

	return fmt.Sprintf(`LOAD DATA LOCAL INFILE '%s'
INTO TABLE `+"`%s`"+`
CHARACTER SET utf8mb4
FIELDS TERMINATED BY ',' OPTIONALLY ENCLOSED BY '"' ESCAPED BY ''
LINES TERMINATED BY '\n'
IGNORE 1 LINES
(%s)
SET updated_at = NULLIF(@updated_at, '')`, path, table, strings.Join(cols, ", "))
}

func decompressToTemp(xzPath, table string) (string, error) {
	src, err := csvio.OpenStream(xzPath)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", fmt.Sprintf("datagen_%s_*.csv", table))
	if err != nil {
		src.Close()
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	_, copyErr := io.Copy(tmp, src)
	srcErr := src.Close()
	tmpErr := tmp.Close()
	for _, err := range []error{copyErr, srcErr, tmpErr} {
		if err != nil {
			os.Remove(tmp.Name())
			return "", fmt.Errorf("xz decompression failed: %w", err)
		}
	}
	return tmp.Name(), nil
}

// MaskDSN hides the password in a DSN for display
func MaskDSN(dsn string) string {
	if colonIdx := strings.Index(dsn, ":"); colonIdx > 0 {
		rest := dsn[colonIdx:]
		if atIdx := strings.Index(rest, "@"); atIdx > 0 {
			return dsn[:colonIdx+1] + "***" + rest[atIdx:]
		}
	}
	return dsn
}
