package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/csvio"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

// MetricsFileName is the Prometheus textfile written beside the day files
const MetricsFileName = "generation_metrics.prom"

// folderStampLayout renders as e.g. Nov10_2025_13h07m
const folderStampLayout = "Jan02_2006_15h04m"

// RowSummary renders the requested rows as "15K+15K+15K"
func RowSummary(rows config.RowsConfig) string {
	return fmt.Sprintf("%dK+%dK+%dK", rows.Day1/1000, rows.Day2/1000, rows.Day3/1000)
}

// PendingFolderName is the folder name before the size suffix is known
func PendingFolderName(prefix string, rows config.RowsConfig, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s", prefix, at.Format(folderStampLayout), RowSummary(rows))
}

// FinalFolderName appends the total size, with dots replaced, e.g. "_7_60MB"
func FinalFolderName(pending string, totalBytes int64) string {
	return pending + "_" + strings.ReplaceAll(utils.FormatFileSize(totalBytes), ".", "_")
}

// DayFile describes one persisted day table
type DayFile struct {
	Day   int
	Name  string
	Path  string
	Rows  int64
	Bytes int64
}

// Output is the result of persisting all day tables
type Output struct {
	Dir        string
	PendingDir string
	Files      []DayFile
	TotalBytes int64
	Renamed    bool
}

// OutputWriter persists day tables into a fresh folder under the output root
type OutputWriter struct {
	cfg    config.OutputConfig
	logger *slog.Logger
}

// NewOutputWriter creates an output writer
func NewOutputWriter(cfg config.OutputConfig, logger *slog.Logger) *OutputWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputWriter{cfg: cfg, logger: logger}
}

// WriteDays creates the pending folder, writes one file per day and, when
// renaming is enabled, moves the folder to its size-annotated name. A
// failure after the folder exists leaves it in place.
func (w *OutputWriter) WriteDays(days []models.DayTable, rows config.RowsConfig, at time.Time) (*Output, error) {
	if err := os.MkdirAll(w.cfg.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}

	pending := filepath.Join(w.cfg.Root, PendingFolderName(w.cfg.Prefix, rows, at))
	if err := os.Mkdir(pending, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}

	out := &Output{Dir: pending, PendingDir: pending}
	for _, table := range days {
		file, err := writeDayFile(pending, table, w.cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", table.Day, err)
		}
		w.logger.Debug("wrote day file", "day", file.Day, "file", file.Name,
			"rows", file.Rows, "size", utils.FormatFileSize(file.Bytes))
		out.Files = append(out.Files, file)
		out.TotalBytes += file.Bytes
	}

	if !w.cfg.Rename {
		return out, nil
	}

	final := filepath.Join(w.cfg.Root, FinalFolderName(filepath.Base(pending), out.TotalBytes))
	if err := os.Rename(pending, final); err != nil {
		return nil, fmt.Errorf("failed to rename output folder: %w", err)
	}
	out.Dir = final
	out.Renamed = true
	for i := range out.Files {
		out.Files[i].Path = filepath.Join(final, out.Files[i].Name)
	}
	return out, nil
}

// writeDayFile writes one table and returns its on-disk size
func writeDayFile(dir string, table models.DayTable, compress bool) (DayFile, error) {
	writer, err := csvio.NewWriter(csvio.WriterConfig{
		OutputDir: dir,
		Filename:  table.FileBase(),
		Headers:   models.Columns,
		Compress:  compress,
	})
	if err != nil {
		return DayFile{}, err
	}

	for i := range table.Records {
		if err := writer.WriteRow(transactionRow(&table.Records[i])); err != nil {
			writer.Close()
			return DayFile{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return DayFile{}, err
	}

	info, err := os.Stat(writer.Path())
	if err != nil {
		return DayFile{}, fmt.Errorf("failed to stat %s: %w", writer.Path(), err)
	}

	return DayFile{
		Day:   table.Day,
		Name:  filepath.Base(writer.Path()),
		Path:  writer.Path(),
		Rows:  writer.RowCount(),
		Bytes: info.Size(),
	}, nil
}

// transactionRow renders a record in models.Columns order
func transactionRow(t *models.PaymentTransaction) []string {
	return []string{
		t.TransactionID,
		t.CustomerID,
		csvio.FormatTime(t.TransactionTimestamp),
		t.MerchantID,
		t.MerchantName,
		t.ProductCategory,
		t.ProductName,
		t.Amount.String(),
		t.FeeAmount.String(),
		t.CashbackAmount.String(),
		csvio.FormatInt64(t.LoyaltyPoints),
		t.PaymentMethod,
		string(t.Status),
		t.DeviceType,
		t.LocationType,
		t.Currency,
		csvio.FormatTimePtr(t.UpdatedAt),
	}
}

// FindLeftovers lists folders under root that still carry a pending name,
// i.e. runs interrupted between writing and renaming.
func FindLeftovers(root, prefix string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `_[A-Z][a-z]{2}\d{2}_\d{4}_\d{2}h\d{2}m_\d+K\+\d+K\+\d+K$`)

	var leftovers []string
	for _, e := range entries {
		if e.IsDir() && pattern.MatchString(e.Name()) {
			leftovers = append(leftovers, filepath.Join(root, e.Name()))
		}
	}
	return leftovers, nil
}
