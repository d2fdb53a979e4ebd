// Package config loads the irtax settings from an optional irtax.yaml file,
// an optional .env file and IRTAX_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/irtax"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "IRTAX"

// Config is the irtax configuration.
type Config struct {
	Currency        string               `mapstructure:"currency"`
	LogLevel        string               `mapstructure:"log_level"`
	Lenient         bool                 `mapstructure:"lenient"`
	ExitTaxPrefixes []string             `mapstructure:"exit_tax_prefixes"`
	Overrides       map[string]string    `mapstructure:"overrides"` // asset -> regime
	Rates           map[string]YearRates `mapstructure:"rates"`     // by tax year
}

// YearRates overrides the built-in rates of one tax year. Unset fields keep
// the built-in value.
type YearRates struct {
	CGTRate             *float64 `mapstructure:"cgt_rate"`
	ExitTaxRate         *float64 `mapstructure:"exit_tax_rate"`
	DIRTRate            *float64 `mapstructure:"dirt_rate"`
	AnnualExemption     *float64 `mapstructure:"annual_exemption"`
	DeemedDisposalYears *int     `mapstructure:"deemed_disposal_years"`
	BedAndBreakfastDays *int     `mapstructure:"bed_and_breakfast_days"`
}

// Load reads the configuration.
//
// When file is empty, irtax.yaml is searched in the current directory and
// then in the user configuration directory, and a missing file is not an
// error. Environment variables override the file, e.g. IRTAX_LOG_LEVEL.
func Load(file string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("irtax")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "irtax"))
		}
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("currency", "EUR")
	v.SetDefault("log_level", "warn")
	v.SetDefault("lenient", false)
	v.SetDefault("exit_tax_prefixes", irtax.DefaultExitTaxPrefixes)
}

func (c *Config) validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	for asset, regime := range c.Overrides {
		if _, err := irtax.ParseRegime(regime); err != nil {
			errs = append(errs, fmt.Errorf("overrides.%s: %w", asset, err))
		}
	}
	for year := range c.Rates {
		if _, err := strconv.Atoi(year); err != nil {
			errs = append(errs, fmt.Errorf("rates: %q is not a year", year))
		}
	}
	return errors.Join(errs...)
}

// RateTable returns the rate table of a tax year: the built-in Irish table
// with the configured values on top.
func (c *Config) RateTable(year int) (irtax.RateTable, error) {
	r := irtax.IrishRates(year)
	if c.Currency != "" {
		r.Currency = strings.ToUpper(c.Currency)
	}
	if len(c.ExitTaxPrefixes) > 0 {
		r.ExitTaxPrefixes = c.ExitTaxPrefixes
	}
	if y, ok := c.Rates[strconv.Itoa(year)]; ok {
		set := func(dst *decimal.Decimal, src *float64) {
			if src != nil {
				*dst = decimal.NewFromFloat(*src)
			}
		}
		set(&r.CGTRate, y.CGTRate)
		set(&r.ExitTaxRate, y.ExitTaxRate)
		set(&r.DIRTRate, y.DIRTRate)
		set(&r.AnnualExemption, y.AnnualExemption)
		if y.DeemedDisposalYears != nil {
			r.DeemedDisposalYears = *y.DeemedDisposalYears
		}
		if y.BedAndBreakfastDays != nil {
			r.BedAndBreakfastDays = *y.BedAndBreakfastDays
		}
	}
	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("rates of %d: %w", year, err)
	}
	return r, nil
}

// Calculator creates a Calculator for a tax year with the configured rates
// and classification.
func (c *Config) Calculator(year int, log zerolog.Logger) (*irtax.Calculator, error) {
	rates, err := c.RateTable(year)
	if err != nil {
		return nil, err
	}
	calc := irtax.NewCalculator(rates, log)
	calc.Classifier.Lenient = c.Lenient
	for asset, name := range c.Overrides {
		regime, err := irtax.ParseRegime(name)
		if err != nil {
			return nil, err
		}
		// keys are lower cased by viper
		calc.Classifier.Overrides[strings.ToUpper(asset)] = regime
	}
	return calc, nil
}

// Logger returns a console logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
