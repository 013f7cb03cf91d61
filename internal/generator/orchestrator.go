package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/data"
	"github.com/willfong/incremental-datagen/internal/metrics"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
	"github.com/willfong/incremental-datagen/internal/validate"
)

// Orchestrator runs the three day generators, validates the result and
// persists it.
type Orchestrator struct {
	cfg       config.Config
	calendar  config.Calendar
	rng       *utils.Random
	refData   *data.ReferenceData
	validator *validate.Validator
	logger    *slog.Logger
	metrics   *metrics.Registry
	progress  func(day, done, total int)
	now       func() time.Time
	runID     string
}

// Options holds optional settings for the orchestrator
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Registry

	// Progress receives per-day row progress
	Progress func(day, done, total int)

	// Now overrides the clock used for the folder name and report
	Now func() time.Time
}

// GenerationResult holds everything one run produced
type GenerationResult struct {
	RunID       string
	Seed        uint64
	GeneratedAt time.Time
	Plans       []DayPlan
	Days        []models.DayTable
	Report      *validate.Report
	Output      *Output
	Leftovers   []string
	Duration    time.Duration
}

// NewOrchestrator validates cfg and prepares a run. Nothing is generated
// or written until Run is called.
func NewOrchestrator(cfg config.Config, opts Options) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	calendar, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}

	refData, err := data.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	o := &Orchestrator{
		cfg:       cfg,
		calendar:  calendar,
		rng:       utils.NewRandom(cfg.Seed),
		refData:   refData,
		validator: validate.NewValidator(refData.LegalKeywords()),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		progress:  opts.Progress,
		now:       opts.Now,
		runID:     uuid.NewString(),
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewRegistry()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// RunID identifies this run in the report
func (o *Orchestrator) RunID() string { return o.runID }

// Seed returns the effective seed, which differs from the configured one
// only when that was 0.
func (o *Orchestrator) Seed() uint64 { return o.rng.Seed() }

// Plan computes the bucket plan of all three days
func (o *Orchestrator) Plan() ([]DayPlan, error) {
	plans := make([]DayPlan, 0, 3)
	for day := 1; day <= 3; day++ {
		plan, err := PlanDay(&o.cfg, day)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// GenerateDays plans every day first, so a bad plan fails before any
// row exists, then generates day 1, 2 and 3 in order.
func (o *Orchestrator) GenerateDays() ([]DayPlan, []models.DayTable, error) {
	plans, err := o.Plan()
	if err != nil {
		return nil, nil, err
	}

	days := make([]models.DayTable, 0, len(plans))
	for _, plan := range plans {
		days = append(days, o.generateDay(plan))
	}
	return plans, days, nil
}

func (o *Orchestrator) generateDay(plan DayPlan) models.DayTable {
	date := o.calendar.Date(plan.Day)
	o.logger.Info("generating day", "day", plan.Day, "date", date.Format(config.DateLayout),
		"rows", plan.Rows, "buckets", plan.String())

	cfg := DayGeneratorConfig{
		Plan:         plan,
		Date:         date,
		PreviousDate: date.AddDate(0, 0, -1),
		NumCustomers: o.cfg.Entities.NumCustomers,
		NumMerchants: o.cfg.Entities.NumMerchants,
	}
	if o.progress != nil {
		day := plan.Day
		cfg.Progress = func(done, total int) { o.progress(day, done, total) }
	}

	start := time.Now()
	table := NewDayGenerator(o.rng.Fork(), o.refData, cfg).Generate()
	elapsed := time.Since(start)

	label := metrics.DayLabel(plan.Day)
	o.metrics.RowsGenerated.WithLabelValues(label).Add(float64(len(table.Records)))
	o.metrics.GenerationSec.WithLabelValues(label).Set(elapsed.Seconds())
	for _, b := range plan.Buckets {
		o.metrics.DefectRows.WithLabelValues(label, string(b.Defect)).Add(float64(b.Rows))
	}

	o.logger.Info("generated day", "day", plan.Day, "rows", len(table.Records), "elapsed", elapsed)
	return table
}

// Run generates, validates and persists all three days, then writes the
// report and the optional chart and metrics files into the final folder.
func (o *Orchestrator) Run() (*GenerationResult, error) {
	started := time.Now()
	generatedAt := o.now()

	plans, days, err := o.GenerateDays()
	if err != nil {
		return nil, err
	}

	report := o.validator.Analyze(days)
	mismatches := report.Mismatches()
	for _, m := range mismatches {
		o.logger.Warn("detection mismatch", "detail", m)
	}
	o.metrics.DetectionMismatches.Set(float64(len(mismatches)))
	o.metrics.CrossDayDuplicateIDs.Set(float64(report.CrossDayDuplicates))

	var leftovers []string
	if o.cfg.Output.Rename {
		leftovers, err = FindLeftovers(o.cfg.Output.Root, o.cfg.Output.Prefix)
		if err != nil {
			o.logger.Warn("could not scan for leftover folders", "error", err)
		}
		for _, dir := range leftovers {
			o.logger.Warn("leftover folder from an interrupted run", "dir", dir)
		}
	}

	output, err := NewOutputWriter(o.cfg.Output, o.logger).WriteDays(days, o.cfg.Rows, generatedAt)
	if err != nil {
		return nil, err
	}
	for _, f := range output.Files {
		report.AttachFile(f.Day, f.Name, f.Bytes)
		o.metrics.OutputBytes.WithLabelValues(metrics.DayLabel(f.Day)).Set(float64(f.Bytes))
	}
	o.logger.Info("wrote output", "dir", output.Dir, "size", utils.FormatFileSize(output.TotalBytes))

	meta := validate.ReportMeta{
		RunID:       o.runID,
		Seed:        o.rng.Seed(),
		GeneratedAt: generatedAt,
		OutputDir:   output.Dir,
		Config:      o.cfg,
	}
	if err := o.writeArtifacts(output.Dir, report, meta); err != nil {
		return nil, err
	}

	return &GenerationResult{
		RunID:       o.runID,
		Seed:        o.rng.Seed(),
		GeneratedAt: generatedAt,
		Plans:       plans,
		Days:        days,
		Report:      report,
		Output:      output,
		Leftovers:   leftovers,
		Duration:    time.Since(started),
	}, nil
}

// writeArtifacts writes the report, then the chart and metrics if enabled
func (o *Orchestrator) writeArtifacts(dir string, report *validate.Report, meta validate.ReportMeta) error {
	if err := writeFile(filepath.Join(dir, validate.ReportFileName), func(f *os.File) error {
		return validate.WriteReport(f, report, meta)
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if o.cfg.Output.Chart {
		if err := writeFile(filepath.Join(dir, validate.ChartFileName), func(f *os.File) error {
			return validate.RenderDefectChart(f, report)
		}); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
	}

	if o.cfg.Output.Metrics {
		if err := o.metrics.WriteTextfile(filepath.Join(dir, MetricsFileName)); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func writeFile(path string, fill func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
