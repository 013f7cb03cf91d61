package generator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/data"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

func TestPlanDayDefaults(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		day  int
		want map[models.DefectClass]int
	}{
		{1, map[models.DefectClass]int{models.DefectNone: 15000}},
		{2, map[models.DefectClass]int{
			models.DefectNone:          14700,
			models.DefectLateArriving:  150,
			models.DefectNullUpdatedAt: 150,
		}},
		{3, map[models.DefectClass]int{
			models.DefectNone:           14501,
			models.DefectMerchantUpdate: 300,
			models.DefectTimezoneSkew:   199,
		}},
	}

	for _, tt := range tests {
		t.Run(models.DayFileBase(tt.day), func(t *testing.T) {
			plan, err := PlanDay(cfg, tt.day)
			require.NoError(t, err)
			assert.Equal(t, 15000, plan.Rows)
			assert.Equal(t, models.DefectNone, plan.Buckets[0].Defect)

			sum := 0
			for _, b := range plan.Buckets {
				sum += b.Rows
				assert.Equal(t, tt.want[b.Defect], b.Rows, "bucket %s", b.Defect)
			}
			assert.Equal(t, plan.Rows, sum)
		})
	}
}

func TestPlanDayZeroRows(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rows.Day2 = 0

	plan, err := PlanDay(cfg, 2)
	require.NoError(t, err)
	for _, b := range plan.Buckets {
		assert.Zero(t, b.Rows)
	}
}

func TestPlanBucketsRejectsOverflow(t *testing.T) {
	_, err := planBuckets(2, 100, []defectShare{
		{models.DefectLateArriving, 0.6},
		{models.DefectNullUpdatedAt, 0.5},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativeCleanRows))
}

func TestPlanDayUnknownDay(t *testing.T) {
	_, err := PlanDay(config.DefaultConfig(), 4)
	assert.Error(t, err)
}

func TestDayPlanString(t *testing.T) {
	plan, err := planBuckets(2, 1000, []defectShare{{models.DefectLateArriving, 0.01}})
	require.NoError(t, err)
	assert.Equal(t, "clean=990 late_arriving=10", plan.String())
	assert.Equal(t, 10, plan.Count(models.DefectLateArriving))
	assert.Equal(t, 0, plan.Count(models.DefectTimezoneSkew))
}

// generateDay runs one day generator with inflated defect rates so each
// bucket is large enough to check.
func generateDay(t *testing.T, day int) (models.DayTable, DayPlan, *data.ReferenceData) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Rows = config.RowsConfig{Day1: 2000, Day2: 2000, Day3: 2000}
	cfg.Defects = config.DefectConfig{
		LateArrivingPct:   0.1,
		NullUpdatedPct:    0.1,
		MerchantUpdatePct: 0.1,
		TimezoneIssuePct:  0.1,
	}
	cal, err := cfg.Calendar()
	require.NoError(t, err)

	plan, err := PlanDay(cfg, day)
	require.NoError(t, err)

	ref, err := data.Load()
	require.NoError(t, err)

	date := cal.Date(day)
	var calls, lastDone int
	gen := NewDayGenerator(utils.NewRandom(7), ref, DayGeneratorConfig{
		Plan:         plan,
		Date:         date,
		PreviousDate: date.AddDate(0, 0, -1),
		NumCustomers: cfg.Entities.NumCustomers,
		NumMerchants: cfg.Entities.NumMerchants,
		Progress: func(done, total int) {
			calls++
			lastDone = done
			assert.Equal(t, plan.Rows, total)
		},
	})
	table := gen.Generate()
	assert.Equal(t, plan.Rows/progressInterval, calls)
	assert.Equal(t, plan.Rows, lastDone)
	return table, plan, ref
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func TestGeneratedFieldInvariants(t *testing.T) {
	for day := 1; day <= 3; day++ {
		table, plan, _ := generateDay(t, day)
		require.Len(t, table.Records, plan.Rows)

		ids := make(map[string]struct{}, len(table.Records))
		for i, rec := range table.Records {
			assert.Equal(t, TransactionID(table.Date, i+1), rec.TransactionID)
			ids[rec.TransactionID] = struct{}{}

			assert.GreaterOrEqual(t, rec.Amount, utils.Rupees(100))
			assert.LessOrEqual(t, rec.Amount, utils.Rupees(50000))
			assert.Positive(t, rec.FeeAmount)
			assert.Less(t, rec.FeeAmount, rec.Amount.MulFloat(0.03)+1)
			assert.Equal(t, "INR", rec.Currency)

			if rec.Status != models.StatusSuccessful {
				assert.Zero(t, rec.CashbackAmount, rec.TransactionID)
				assert.Zero(t, rec.LoyaltyPoints, rec.TransactionID)
			}
			assert.True(t, strings.HasPrefix(rec.CustomerID, "USER_"))
			assert.LessOrEqual(t, rec.CustomerID, CustomerID(1000))
			assert.LessOrEqual(t, rec.MerchantID, MerchantID(500))
		}
		assert.Len(t, ids, plan.Rows)

		for _, b := range plan.Buckets {
			assert.Equal(t, b.Rows, table.CountDefect(b.Defect), "day %d %s", day, b.Defect)
		}
	}
}

func TestDefectShapes(t *testing.T) {
	day2, _, _ := generateDay(t, 2)
	day3, _, ref := generateDay(t, 3)

	prev2 := day2.Date.AddDate(0, 0, -1)
	for _, rec := range day2.Records {
		switch rec.Defect {
		case models.DefectLateArriving:
			assert.True(t, sameDate(rec.TransactionTimestamp, prev2), rec.TransactionID)
			require.NotNil(t, rec.UpdatedAt)
			assert.True(t, sameDate(*rec.UpdatedAt, day2.Date))
		case models.DefectNullUpdatedAt:
			assert.Nil(t, rec.UpdatedAt)
			assert.True(t, sameDate(rec.TransactionTimestamp, day2.Date))
		default:
			require.NotNil(t, rec.UpdatedAt)
			assert.Equal(t, rec.TransactionTimestamp, *rec.UpdatedAt)
			assert.True(t, sameDate(rec.TransactionTimestamp, day2.Date))
		}
	}

	prev3 := day3.Date.AddDate(0, 0, -1)
	for _, rec := range day3.Records {
		switch rec.Defect {
		case models.DefectMerchantUpdate:
			assert.True(t, ref.IsLegalEntityName(rec.MerchantName), rec.MerchantName)
			assert.LessOrEqual(t, rec.MerchantID, MerchantID(ref.NamedMerchants()))
		case models.DefectTimezoneSkew:
			require.NotNil(t, rec.UpdatedAt)
			assert.Equal(t, config.TimezoneSkewOffset, rec.UpdatedAt.Sub(rec.TransactionTimestamp))
			assert.True(t, sameDate(rec.TransactionTimestamp, prev3), rec.TransactionID)
			assert.True(t, sameDate(*rec.UpdatedAt, day3.Date))
		default:
			assert.False(t, ref.IsLegalEntityName(rec.MerchantName), rec.MerchantName)
			assert.True(t, sameDate(rec.TransactionTimestamp, day3.Date))
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, _, _ := generateDay(t, 3)
	b, _, _ := generateDay(t, 3)
	assert.Equal(t, a.Records, b.Records)
}
