package generator

import (
	"math"
	"time"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/data"
	"github.com/willfong/incremental-datagen/internal/models"
	"github.com/willfong/incremental-datagen/internal/utils"
)

// FieldSampler draws single field values from one RNG stream
type FieldSampler struct {
	rng *utils.Random
	ref *data.ReferenceData
}

// NewFieldSampler creates a sampler over rng and the reference catalog
func NewFieldSampler(rng *utils.Random, ref *data.ReferenceData) *FieldSampler {
	return &FieldSampler{rng: rng, ref: ref}
}

// Timestamp returns a whole-second instant on day with the hour in
// [startHour, endHour].
func (s *FieldSampler) Timestamp(day time.Time, startHour, endHour int) time.Time {
	hour := s.rng.IntRange(startHour, endHour)
	minute := s.rng.IntN(60)
	second := s.rng.IntN(60)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, day.Location())
}

// Choice picks a label with probability proportional to its weight
func (s *FieldSampler) Choice(labels data.WeightedLabels) string {
	i := s.rng.WeightedPick(labels.Weights())
	if i < 0 {
		return ""
	}
	return labels[i].Label
}

// Product picks a category uniformly, then a product within it
func (s *FieldSampler) Product() (category, product string) {
	category = s.rng.PickString(s.ref.CategoryNames())
	product = s.rng.PickString(s.ref.Products(category))
	return category, product
}

// Amount draws a lognormal amount clamped to [100, 50000]. Draws outside
// the range land exactly on a bound, so the tails are heavier at the
// edges than a true lognormal.
func (s *FieldSampler) Amount() utils.Money {
	raw := s.rng.LogNormal(config.AmountLogMean, config.AmountLogSigma)
	raw = math.Max(config.MinAmountRupee, math.Min(config.MaxAmountRupee, raw))
	return utils.FromFloat(raw)
}

// Fee is amount times a rate in [1.5%, 3%)
func (s *FieldSampler) Fee(amount utils.Money) utils.Money {
	return amount.MulFloat(s.rng.Float64Range(config.MinFeeRate, config.MaxFeeRate))
}

// Cashback is amount times a rate in [0%, 5%) for successful payments, else zero
func (s *FieldSampler) Cashback(amount utils.Money, status models.TransactionStatus) utils.Money {
	if status != models.StatusSuccessful {
		return 0
	}
	return amount.MulFloat(s.rng.Float64Range(0, config.MaxCashbackRate))
}

// LoyaltyPoints is floor(amount / U(10, 20)) for successful payments, else zero
func (s *FieldSampler) LoyaltyPoints(amount utils.Money, status models.TransactionStatus) int64 {
	if status != models.StatusSuccessful {
		return 0
	}
	return int64(amount.ToFloat() / s.rng.Float64Range(config.MinLoyaltyDivisor, config.MaxLoyaltyDivisor))
}
