// Package config contains compile-time defaults for the data generator.
// Every value here can be overridden from the config file, the environment
// or command-line flags; the generation tunables at the bottom cannot.
package config

import "time"

// =============================================================================
// RUN DEFAULTS
// =============================================================================

const (
	// DefaultSeed makes runs byte-for-byte reproducible. 0 picks a random seed.
	DefaultSeed = 42

	// DefaultRowsPerDay is the row count for each of the three days
	DefaultRowsPerDay = 15000
)

// Defect rates as fractions of each day's row count
const (
	// DefaultLateArrivingPct is the day 2 share of rows whose event time is on day 1
	DefaultLateArrivingPct = 0.01

	// DefaultNullUpdatedPct is the day 2 share of rows with no updated_at
	DefaultNullUpdatedPct = 0.01

	// DefaultMerchantUpdatePct is the day 3 share of rows carrying a legal-entity merchant name
	DefaultMerchantUpdatePct = 0.02

	// DefaultTimezoneIssuePct is the day 3 share of rows with skewed timestamps
	DefaultTimezoneIssuePct = 0.0133
)

// Entity cardinalities for foreign-key sampling
const (
	DefaultNumCustomers = 1000
	DefaultNumMerchants = 500
)

// Calendar anchors, must be consecutive days
const (
	DefaultDay1Date = "2024-11-01"
	DefaultDay2Date = "2024-11-02"
	DefaultDay3Date = "2024-11-03"
)

// Output
const (
	DefaultOutputRoot   = "."
	DefaultOutputPrefix = "incremental_data"
)

// =============================================================================
// GENERATION TUNABLES
// =============================================================================

// DateLayout is the layout of the configured calendar dates
const DateLayout = "2006-01-02"

// Amount distribution. The clamp piles the lognormal tails onto the bounds;
// that mass at exactly 100.00 and 50000.00 is expected.
const (
	AmountLogMean  = 7.5
	AmountLogSigma = 1.0
	MinAmountRupee = 100
	MaxAmountRupee = 50000
)

// Derived financial fields
const (
	MinFeeRate      = 0.015
	MaxFeeRate      = 0.03
	MaxCashbackRate = 0.05

	// Loyalty points are amount divided by a draw from this range
	MinLoyaltyDivisor = 10.0
	MaxLoyaltyDivisor = 20.0
)

// Timezone skew
const (
	// TimezoneSkewOffset is subtracted from updated_at to get the skewed event time
	TimezoneSkewOffset = 10*time.Hour + 30*time.Minute

	// TimezoneSkewLastHour bounds the updated_at hour of skewed rows so the
	// event time always lands on the previous day.
	TimezoneSkewLastHour = 9
)

// =============================================================================
// DATABASE DEFAULTS
// =============================================================================

const (
	// DBDriver is the database driver to use
	DBDriver = "mysql"

	// DBMaxOpenConns is maximum open connections in the pool
	DBMaxOpenConns = 4

	// DBMaxIdleConns is maximum idle connections in the pool
	DBMaxIdleConns = 2

	// DBConnMaxLifetime is how long a connection can be reused
	DBConnMaxLifetime = 5 * time.Minute

	// DBTablePrefix names the raw warehouse tables (raw_transactions_day1...)
	DBTablePrefix = "raw_transactions_day"
)
