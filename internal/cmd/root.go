package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/willfong/incremental-datagen/internal/config"
	"github.com/willfong/incremental-datagen/internal/logging"
	"github.com/willfong/incremental-datagen/internal/ui"
)

// envPrefix namespaces environment overrides, e.g. DATAGEN_ROWS_DAY1
const envPrefix = "DATAGEN"

var (
	cfgFile string
	verbose bool
	noColor bool

	v = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datagen",
	Short: "Payment gateway incremental data generator",
	Long: `Generates three consecutive days of synthetic payment gateway
transactions with known data quality defects, for exercising incremental
warehouse loads.

Day 1 is clean. Day 2 carries late-arriving rows and NULL updated_at
values. Day 3 carries merchant renames and timezone-skewed timestamps.

Settings come from flags, DATAGEN_* environment variables, an optional
datagen.yaml, and the defaults in internal/config/defaults.go.

Example usage:
  datagen generate --seed 42
  datagen check ./incremental_data_Nov10_2025_13h07m_15K+15K+15K_7_60MB
  datagen import ./incremental_data_... --db "user:pass@tcp(host:3306)/dw"`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./datagen.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors and animations")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text, json, logfmt")

	mustBind(v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")))
	mustBind(v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format")))

	// Silence usage on error - we'll print our own messages
	rootCmd.SilenceUsage = true

	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// initConfig layers defaults, the config file and the environment
func initConfig() {
	config.SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("datagen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}

	if verbose {
		v.Set("log.level", "debug")
	}
}

// mustBind panics on a flag binding error
func mustBind(err error) {
	if err != nil {
		panic(err)
	}
}

func newUI() *ui.UI {
	u := ui.New()
	if noColor {
		u.SetNoColor(true)
	}
	return u
}

// loadConfig builds and validates the effective configuration
func loadConfig() (*config.Config, error) {
	return config.Load(v)
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(os.Stderr, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// setup loads config and logger, exiting on failure
func setup(u *ui.UI) (*config.Config, *slog.Logger) {
	cfg, err := loadConfig()
	if err != nil {
		fail(u, "Invalid configuration", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		fail(u, "Logger setup failed", err)
	}
	return cfg, logger
}

// fail prints err to stderr and exits with status 1
func fail(u *ui.UI, msg string, err error) {
	fmt.Fprintln(os.Stderr, u.Error(msg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
	os.Exit(1)
}
