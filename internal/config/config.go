package config

import (
	"math"
	"os"
	"strconv"
	"strings"

	"vaeval/internal"
	"vaeval/internal/errors"
)

// Output formats
const (
	FormatCSV      = "csv"
	FormatWorkbook = "xlsx"
	FormatPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig
	Database   DatabaseConfig
	Output     OutputConfig
	Validation ValidationConfig
	Summary    SummaryConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level internal.LogLevel
}

// DatabaseConfig holds database connection settings. The URL is required
// only for the postgres output format.
type DatabaseConfig struct {
	URL string
}

// OutputConfig selects where result tables are written
type OutputConfig struct {
	Dir    string
	Format string
}

// ValidationConfig holds split and resampling settings
type ValidationConfig struct {
	NSplits      int
	TestSize     float64
	SplitSeed    *uint64 // nil draws a fresh seed per run
	ResampleSeed *uint64 // nil draws a fresh seed per run
	ResampleTest bool
	ResampleSize float64
	MaxParallel  int64
}

// SummaryConfig holds bootstrap settings for uncertainty intervals
type SummaryConfig struct {
	Bootstraps int
	Seed       uint64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	level, ok := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if !ok {
		return nil, errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
	}
	config.Log = LogConfig{Level: level}

	config.Database = DatabaseConfig{URL: os.Getenv("DATABASE_URL")}

	config.Output = OutputConfig{
		Dir:    getEnvOrDefault("OUTPUT_DIR", "./data"),
		Format: strings.ToLower(getEnvOrDefault("OUTPUT_FORMAT", FormatCSV)),
	}

	validationConfig, err := loadValidationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load validation configuration")
	}
	config.Validation = *validationConfig

	summaryConfig, err := loadSummaryConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load summary configuration")
	}
	config.Summary = *summaryConfig

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadValidationConfig() (*ValidationConfig, error) {
	var err error
	vc := &ValidationConfig{}

	if vc.NSplits, err = getEnvInt("N_SPLITS", 2); err != nil {
		return nil, err
	}
	if vc.TestSize, err = getEnvFloat("TEST_SIZE", 0.25); err != nil {
		return nil, err
	}
	if vc.SplitSeed, err = getEnvOptionalUint("SPLIT_SEED"); err != nil {
		return nil, err
	}
	if vc.ResampleSeed, err = getEnvOptionalUint("RESAMPLE_SEED"); err != nil {
		return nil, err
	}
	if vc.ResampleTest, err = getEnvBool("RESAMPLE_TEST", true); err != nil {
		return nil, err
	}
	if vc.ResampleSize, err = getEnvFloat("RESAMPLE_SIZE", 1); err != nil {
		return nil, err
	}
	parallel, err := getEnvInt("MAX_PARALLEL_SHARDS", 1)
	if err != nil {
		return nil, err
	}
	vc.MaxParallel = int64(parallel)
	return vc, nil
}

func loadSummaryConfig() (*SummaryConfig, error) {
	n, err := getEnvInt("BOOTSTRAP_N", 500)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvUint("SUMMARY_SEED", 8675309)
	if err != nil {
		return nil, err
	}
	return &SummaryConfig{Bootstraps: n, Seed: seed}, nil
}

// Validate checks ranges that the environment parsers cannot
func (c *Config) Validate() error {
	v := c.Validation
	if v.NSplits < 1 {
		return errors.ConfigInvalid("N_SPLITS must be at least 1")
	}
	if !(v.TestSize > 0 && v.TestSize < 1) {
		return errors.ConfigInvalid("TEST_SIZE must be strictly between 0 and 1")
	}
	if v.ResampleTest && (!(v.ResampleSize > 0) || math.IsInf(v.ResampleSize, 0)) {
		return errors.ConfigInvalid("RESAMPLE_SIZE must be a positive finite number")
	}
	if v.MaxParallel < 1 {
		return errors.ConfigInvalid("MAX_PARALLEL_SHARDS must be at least 1")
	}
	if c.Summary.Bootstraps < 1 {
		return errors.ConfigInvalid("BOOTSTRAP_N must be at least 1")
	}
	switch c.Output.Format {
	case FormatCSV, FormatWorkbook:
	case FormatPostgres:
		if c.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres output format")
		}
	default:
		return errors.ConfigInvalid("OUTPUT_FORMAT must be csv, xlsx or postgres")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return intValue, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	uintValue, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a non-negative integer")
	}
	return uintValue, nil
}

func getEnvOptionalUint(key string) (*uint64, error) {
	if os.Getenv(key) == "" {
		return nil, nil
	}
	v, err := getEnvUint(key, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(floatValue) {
		return 0, errors.ConfigInvalid(key + " must be a number")
	}
	return floatValue, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(key + " must be true or false")
	}
	return boolValue, nil
}
