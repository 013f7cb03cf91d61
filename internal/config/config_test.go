package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cal, err := cfg.Calendar()
	require.NoError(t, err)
	assert.Equal(t, "2024-11-02", cal.Date(2).Format(DateLayout))
	assert.Equal(t, 45000, cfg.Rows.Total())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{
			name: "day 2 defects exceed 100%",
			mutate: func(c *Config) {
				c.Defects.LateArrivingPct = 0.6
				c.Defects.NullUpdatedPct = 0.5
			},
			wantMsg: "late_arriving_pct + defects.null_updated_pct",
		},
		{
			name: "day 3 defects exceed 100%",
			mutate: func(c *Config) {
				c.Defects.MerchantUpdatePct = 0.9
				c.Defects.TimezoneIssuePct = 0.2
			},
			wantMsg: "merchant_update_pct + defects.timezone_issue_pct",
		},
		{
			name:    "negative rate",
			mutate:  func(c *Config) { c.Defects.LateArrivingPct = -0.1 },
			wantMsg: "defects.late_arriving_pct must be >= 0",
		},
		{
			name:    "negative rows",
			mutate:  func(c *Config) { c.Rows.Day3 = -1 },
			wantMsg: "rows.day3 must be >= 0",
		},
		{
			name:    "zero merchants",
			mutate:  func(c *Config) { c.Entities.NumMerchants = 0 },
			wantMsg: "entities.num_merchants must be >= 1",
		},
		{
			name:    "unparseable date",
			mutate:  func(c *Config) { c.Dates.Day2 = "11/02/2024" },
			wantMsg: "dates.day2 must be a YYYY-MM-DD date",
		},
		{
			name:    "dates not consecutive",
			mutate:  func(c *Config) { c.Dates.Day3 = "2024-11-05" },
			wantMsg: "dates.day3 must be the day after dates.day2",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantMsg: "log.level must be one of",
		},
		{
			name:    "table prefix with punctuation",
			mutate:  func(c *Config) { c.Database.TablePrefix = "raw;drop" },
			wantMsg: "database.table_prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateAggregatesMessages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows.Day1 = -5
	cfg.Entities.NumCustomers = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, 2, strings.Count(err.Error(), "\n  - "))
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("rows.day2", 1000)
	v.Set("defects.timezone_issue_pct", 0.05)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 15000, cfg.Rows.Day1)
	assert.Equal(t, 1000, cfg.Rows.Day2)
	assert.InDelta(t, 0.05, cfg.Defects.TimezoneIssuePct, 1e-12)
	assert.Equal(t, "incremental_data", cfg.Output.Prefix)
	assert.True(t, cfg.Output.Rename)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATAGEN_ROWS_DAY1", "250")
	t.Setenv("DATAGEN_OUTPUT_COMPRESS", "true")

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("DATAGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Rows.Day1)
	assert.True(t, cfg.Output.Compress)
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("defects.late_arriving_pct", 0.7)
	v.Set("defects.null_updated_pct", 0.7)

	_, err := Load(v)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
