package generator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/data"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

// ErrNegativeCleanRows is returned when a day's defect buckets need more
// rows than the day has.
var ErrNegativeCleanRows = errors.New("defect buckets exceed row count")

// progressInterval is how many rows are generated between progress callbacks
const progressInterval = 500

// Bucket is a run of consecutive rows sharing one defect class
type Bucket struct {
	Defect models.DefectClass
	Rows   int
}

// DayPlan splits one day's rows into disjoint buckets. The clean bucket
// comes first and absorbs the truncation remainder.
type DayPlan struct {
	Day     int
	Rows    int
	Buckets []Bucket
}

// Count returns the planned rows for a defect class
func (p DayPlan) Count(class models.DefectClass) int {
	for _, b := range p.Buckets {
		if b.Defect == class {
			return b.Rows
		}
	}
	return 0
}

// String renders the plan as "clean=14700 late_arriving=150 ..."
func (p DayPlan) String() string {
	parts := make([]string, 0, len(p.Buckets))
	for _, b := range p.Buckets {
		parts = append(parts, fmt.Sprintf("%s=%d", b.Defect, b.Rows))
	}
	return strings.Join(parts, " ")
}

type defectShare struct {
	class models.DefectClass
	pct   float64
}

// PlanDay builds the bucket plan for day 1, 2 or 3 from cfg
func PlanDay(cfg *config.Config, day int) (DayPlan, error) {
	var shares []defectShare
	switch day {
	case 1:
	case 2:
		shares = []defectShare{
			{models.DefectLateArriving, cfg.Defects.LateArrivingPct},
			{models.DefectNullUpdatedAt, cfg.Defects.NullUpdatedPct},
		}
	case 3:
		shares = []defectShare{
			{models.DefectMerchantUpdate, cfg.Defects.MerchantUpdatePct},
			{models.DefectTimezoneSkew, cfg.Defects.TimezoneIssuePct},
		}
	default:
		return DayPlan{}, fmt.Errorf("unknown day %d", day)
	}
	return planBuckets(day, cfg.Rows.ForDay(day), shares)
}

func planBuckets(day, rows int, shares []defectShare) (DayPlan, error) {
	defects := make([]Bucket, 0, len(shares))
	defectRows := 0
	for _, s := range shares {
		n := int(float64(rows) * s.pct)
		defects = append(defects, Bucket{Defect: s.class, Rows: n})
		defectRows += n
	}

	clean := rows - defectRows
	if clean < 0 {
		return DayPlan{}, fmt.Errorf("day %d: %w: %d defect rows for %d rows", day, ErrNegativeCleanRows, defectRows, rows)
	}

	return DayPlan{
		Day:     day,
		Rows:    rows,
		Buckets: append([]Bucket{{Defect: models.DefectNone, Rows: clean}}, defects...),
	}, nil
}

// DayGeneratorConfig holds everything one day generator needs
type DayGeneratorConfig struct {
	Plan DayPlan

	// Date is the day rows are filed under; PreviousDate is where
	// late-arriving event times are drawn from.
	Date         time.Time
	PreviousDate time.Time

	NumCustomers int
	NumMerchants int

	// Progress is called every few hundred rows and after the last row
	Progress func(done, total int)
}

// DayGenerator produces the records of one simulated day
type DayGenerator struct {
	cfg     DayGeneratorConfig
	rng     *utils.Random
	ref     *data.ReferenceData
	sampler *FieldSampler
}

// NewDayGenerator creates a generator drawing from its own RNG stream
func NewDayGenerator(rng *utils.Random, ref *data.ReferenceData, cfg DayGeneratorConfig) *DayGenerator {
	return &DayGenerator{
		cfg:     cfg,
		rng:     rng,
		ref:     ref,
		sampler: NewFieldSampler(rng, ref),
	}
}

// Generate emits every bucket in plan order with one continuous sequence
func (g *DayGenerator) Generate() models.DayTable {
	total := g.cfg.Plan.Rows
	table := models.DayTable{
		Day:     g.cfg.Plan.Day,
		Date:    g.cfg.Date,
		Records: make([]models.PaymentTransaction, 0, total),
	}

	seq := 0
	for _, bucket := range g.cfg.Plan.Buckets {
		for i := 0; i < bucket.Rows; i++ {
			seq++
			table.Records = append(table.Records, g.generateRecord(seq, bucket.Defect))
			if g.cfg.Progress != nil && (seq%progressInterval == 0 || seq == total) {
				g.cfg.Progress(seq, total)
			}
		}
	}

	return table
}

// generateRecord populates one row. Draw order is fixed so a seed always
// yields the same file.
func (g *DayGenerator) generateRecord(seq int, defect models.DefectClass) models.PaymentTransaction {
	customerNum := g.rng.IntRange(1, g.cfg.NumCustomers)
	merchantNum := g.merchantNumber(defect)

	merchantName := g.ref.MerchantName(merchantNum)
	if defect == models.DefectMerchantUpdate {
		merchantName = g.ref.LegalName(merchantName)
	}

	eventTime, updatedAt := g.timestamps(defect)
	category, product := g.sampler.Product()
	amount := g.sampler.Amount()
	fee := g.sampler.Fee(amount)
	status := models.TransactionStatus(g.sampler.Choice(g.ref.Channels.Statuses))

	return models.PaymentTransaction{
		TransactionID:        TransactionID(g.cfg.Date, seq),
		CustomerID:           CustomerID(customerNum),
		TransactionTimestamp: eventTime,
		MerchantID:           MerchantID(merchantNum),
		MerchantName:         merchantName,
		ProductCategory:      category,
		ProductName:          product,
		Amount:               amount,
		FeeAmount:            fee,
		CashbackAmount:       g.sampler.Cashback(amount, status),
		LoyaltyPoints:        g.sampler.LoyaltyPoints(amount, status),
		PaymentMethod:        g.sampler.Choice(g.ref.Channels.PaymentMethods),
		Status:               status,
		DeviceType:           g.sampler.Choice(g.ref.Channels.DeviceTypes),
		LocationType:         g.sampler.Choice(g.ref.Channels.LocationTypes),
		Currency:             g.ref.Currency(),
		UpdatedAt:            updatedAt,
		Defect:               defect,
	}
}

// merchantNumber picks a 1-based merchant. Renamed merchants must be ones
// with a real trading name.
func (g *DayGenerator) merchantNumber(defect models.DefectClass) int {
	if defect == models.DefectMerchantUpdate {
		return g.rng.IntRange(1, min(g.cfg.NumMerchants, g.ref.NamedMerchants()))
	}
	return g.rng.IntRange(1, g.cfg.NumMerchants)
}

// timestamps returns the event time and updated_at for a defect class
func (g *DayGenerator) timestamps(defect models.DefectClass) (time.Time, *time.Time) {
	switch defect {
	case models.DefectLateArriving:
		eventTime := g.sampler.Timestamp(g.cfg.PreviousDate, 0, 23)
		updatedAt := g.sampler.Timestamp(g.cfg.Date, 0, 23)
		return eventTime, &updatedAt

	case models.DefectNullUpdatedAt:
		return g.sampler.Timestamp(g.cfg.Date, 0, 23), nil

	case models.DefectTimezoneSkew:
		// updated_at before 10:00 puts the shifted event time on the previous day
		updatedAt := g.sampler.Timestamp(g.cfg.Date, 0, config.TimezoneSkewLastHour)
		return updatedAt.Add(-config.TimezoneSkewOffset), &updatedAt

	default:
		eventTime := g.sampler.Timestamp(g.cfg.Date, 0, 23)
		updatedAt := eventTime
		return eventTime, &updatedAt
	}
}
