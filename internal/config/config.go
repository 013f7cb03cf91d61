package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for one generator run. It is passed by
// value into the generators; nothing reads package-level state.
type Config struct {
	// Random seed for reproducibility (0 = random)
	Seed int64 `mapstructure:"seed"`

	Rows     RowsConfig     `mapstructure:"rows"`
	Defects  DefectConfig   `mapstructure:"defects"`
	Entities EntityConfig   `mapstructure:"entities"`
	Dates    DateConfig     `mapstructure:"dates"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// RowsConfig is the requested row count per day
type RowsConfig struct {
	Day1 int `mapstructure:"day1" validate:"gte=0"`
	Day2 int `mapstructure:"day2" validate:"gte=0"`
	Day3 int `mapstructure:"day3" validate:"gte=0"`
}

// ForDay returns the row count for day 1, 2 or 3
func (r RowsConfig) ForDay(day int) int {
	switch day {
	case 1:
		return r.Day1
	case 2:
		return r.Day2
	case 3:
		return r.Day3
	}
	return 0
}

// Total returns the row count across all days
func (r RowsConfig) Total() int {
	return r.Day1 + r.Day2 + r.Day3
}

// DefectConfig holds defect fractions (0.0-1.0) of each day's rows
type DefectConfig struct {
	LateArrivingPct   float64 `mapstructure:"late_arriving_pct" validate:"gte=0,lte=1"`
	NullUpdatedPct    float64 `mapstructure:"null_updated_pct" validate:"gte=0,lte=1"`
	MerchantUpdatePct float64 `mapstructure:"merchant_update_pct" validate:"gte=0,lte=1"`
	TimezoneIssuePct  float64 `mapstructure:"timezone_issue_pct" validate:"gte=0,lte=1"`
}

// EntityConfig bounds the customer and merchant id ranges
type EntityConfig struct {
	NumCustomers int `mapstructure:"num_customers" validate:"gte=1,lte=9999"`
	NumMerchants int `mapstructure:"num_merchants" validate:"gte=1,lte=9999"`
}

// DateConfig holds the three anchor dates as YYYY-MM-DD
type DateConfig struct {
	Day1 string `mapstructure:"day1" validate:"required,datetime=2006-01-02"`
	Day2 string `mapstructure:"day2" validate:"required,datetime=2006-01-02"`
	Day3 string `mapstructure:"day3" validate:"required,datetime=2006-01-02"`
}

// OutputConfig controls where and how files are written
type OutputConfig struct {
	Root     string `mapstructure:"root" validate:"required"`
	Prefix   string `mapstructure:"prefix" validate:"required,excludesall=/\\"`
	Compress bool   `mapstructure:"compress"`
	Chart    bool   `mapstructure:"chart"`
	Metrics  bool   `mapstructure:"metrics"`

	// Rename appends the human-readable total size to the folder name
	// after all files are written.
	Rename bool `mapstructure:"rename"`
}

// DatabaseConfig holds warehouse connection settings for the import command
type DatabaseConfig struct {
	// Format: user:password@tcp(host:port)/database
	DSN string `mapstructure:"dsn"`

	Driver          string        `mapstructure:"driver"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	TablePrefix     string        `mapstructure:"table_prefix" validate:"required"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json logfmt"`
}

// Calendar is the parsed form of DateConfig
type Calendar struct {
	Day1 time.Time
	Day2 time.Time
	Day3 time.Time
}

// Date returns the anchor date for day 1, 2 or 3
func (c Calendar) Date(day int) time.Time {
	switch day {
	case 1:
		return c.Day1
	case 2:
		return c.Day2
	default:
		return c.Day3
	}
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Seed: DefaultSeed,
		Rows: RowsConfig{
			Day1: DefaultRowsPerDay,
			Day2: DefaultRowsPerDay,
			Day3: DefaultRowsPerDay,
		},
		Defects: DefectConfig{
			LateArrivingPct:   DefaultLateArrivingPct,
			NullUpdatedPct:    DefaultNullUpdatedPct,
			MerchantUpdatePct: DefaultMerchantUpdatePct,
			TimezoneIssuePct:  DefaultTimezoneIssuePct,
		},
		Entities: EntityConfig{
			NumCustomers: DefaultNumCustomers,
			NumMerchants: DefaultNumMerchants,
		},
		Dates: DateConfig{
			Day1: DefaultDay1Date,
			Day2: DefaultDay2Date,
			Day3: DefaultDay3Date,
		},
		Output: OutputConfig{
			Root:   DefaultOutputRoot,
			Prefix: DefaultOutputPrefix,
			Rename: true,
		},
		Database: DatabaseConfig{
			Driver:          DBDriver,
			MaxOpenConns:    DBMaxOpenConns,
			MaxIdleConns:    DBMaxIdleConns,
			ConnMaxLifetime: DBConnMaxLifetime,
			TablePrefix:     DBTablePrefix,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every default with v so that environment variables
// and config files can override individual keys.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("seed", d.Seed)
	v.SetDefault("rows.day1", d.Rows.Day1)
	v.SetDefault("rows.day2", d.Rows.Day2)
	v.SetDefault("rows.day3", d.Rows.Day3)
	v.SetDefault("defects.late_arriving_pct", d.Defects.LateArrivingPct)
	v.SetDefault("defects.null_updated_pct", d.Defects.NullUpdatedPct)
	v.SetDefault("defects.merchant_update_pct", d.Defects.MerchantUpdatePct)
	v.SetDefault("defects.timezone_issue_pct", d.Defects.TimezoneIssuePct)
	v.SetDefault("entities.num_customers", d.Entities.NumCustomers)
	v.SetDefault("entities.num_merchants", d.Entities.NumMerchants)
	v.SetDefault("dates.day1", d.Dates.Day1)
	v.SetDefault("dates.day2", d.Dates.Day2)
	v.SetDefault("dates.day3", d.Dates.Day3)
	v.SetDefault("output.root", d.Output.Root)
	v.SetDefault("output.prefix", d.Output.Prefix)
	v.SetDefault("output.compress", d.Output.Compress)
	v.SetDefault("output.chart", d.Output.Chart)
	v.SetDefault("output.metrics", d.Output.Metrics)
	v.SetDefault("output.rename", d.Output.Rename)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.table_prefix", d.Database.TablePrefix)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Calendar parses the configured dates. Call Validate first.
func (c *Config) Calendar() (Calendar, error) {
	var cal Calendar
	var err error
	if cal.Day1, err = time.Parse(DateLayout, c.Dates.Day1); err != nil {
		return cal, fmt.Errorf("dates.day1: %w", err)
	}
	if cal.Day2, err = time.Parse(DateLayout, c.Dates.Day2); err != nil {
		return cal, fmt.Errorf("dates.day2: %w", err)
	}
	if cal.Day3, err = time.Parse(DateLayout, c.Dates.Day3); err != nil {
		return cal, fmt.Errorf("dates.day3: %w", err)
	}
	return cal, nil
}

var (
	structValidator   = newStructValidator()
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []string

	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	// A day whose defect shares exceed 100% would need a negative clean bucket
	if sum := c.Defects.LateArrivingPct + c.Defects.NullUpdatedPct; sum > 1.0 {
		errs = append(errs, fmt.Sprintf("defects.late_arriving_pct + defects.null_updated_pct must not exceed 1.0 (got %.4f)", sum))
	}
	if sum := c.Defects.MerchantUpdatePct + c.Defects.TimezoneIssuePct; sum > 1.0 {
		errs = append(errs, fmt.Sprintf("defects.merchant_update_pct + defects.timezone_issue_pct must not exceed 1.0 (got %.4f)", sum))
	}

	if cal, err := c.Calendar(); err == nil {
		if !cal.Day2.Equal(cal.Day1.AddDate(0, 0, 1)) {
			errs = append(errs, "dates.day2 must be the day after dates.day1")
		}
		if !cal.Day3.Equal(cal.Day2.AddDate(0, 0, 1)) {
			errs = append(errs, "dates.day3 must be the day after dates.day2")
		}
	}

	if c.Database.TablePrefix != "" && !identifierPattern.MatchString(c.Database.TablePrefix) {
		errs = append(errs, "database.table_prefix may only contain letters, digits and underscores")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "database.max_idle_conns should not exceed max_open_conns")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: validation errors:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}

// describeFieldError turns a validator failure into "key must ..." text
func describeFieldError(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", key, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got %v)", key, fe.Param(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date (got %q)", key, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", key, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q check (got %v)", key, fe.Tag(), fe.Value())
	}
}
