package config

import (
	"testing"

	"vaeval/internal"
	"vaeval/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"LOG_LEVEL", "DATABASE_URL", "OUTPUT_DIR", "OUTPUT_FORMAT", "N_SPLITS", "TEST_SIZE",
	"SPLIT_SEED", "RESAMPLE_SEED", "RESAMPLE_TEST", "RESAMPLE_SIZE", "MAX_PARALLEL_SHARDS",
	"BOOTSTRAP_N", "SUMMARY_SEED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, internal.LogLevelInfo, cfg.Log.Level)
	assert.Equal(t, "", cfg.Database.URL)
	assert.Equal(t, "./data", cfg.Output.Dir)
	assert.Equal(t, FormatCSV, cfg.Output.Format)
	assert.Equal(t, 2, cfg.Validation.NSplits)
	assert.Equal(t, 0.25, cfg.Validation.TestSize)
	assert.Nil(t, cfg.Validation.SplitSeed)
	assert.Nil(t, cfg.Validation.ResampleSeed)
	assert.True(t, cfg.Validation.ResampleTest)
	assert.Equal(t, 1.0, cfg.Validation.ResampleSize)
	assert.Equal(t, int64(1), cfg.Validation.MaxParallel)
	assert.Equal(t, 500, cfg.Summary.Bootstraps)
	assert.Equal(t, uint64(8675309), cfg.Summary.Seed)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/vaeval?sslmode=disable")
	t.Setenv("OUTPUT_FORMAT", "Postgres")
	t.Setenv("N_SPLITS", "500")
	t.Setenv("TEST_SIZE", "0.3")
	t.Setenv("SPLIT_SEED", "42")
	t.Setenv("RESAMPLE_SEED", "7")
	t.Setenv("RESAMPLE_TEST", "false")
	t.Setenv("RESAMPLE_SIZE", "0")
	t.Setenv("MAX_PARALLEL_SHARDS", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, internal.LogLevelDebug, cfg.Log.Level)
	assert.Equal(t, FormatPostgres, cfg.Output.Format)
	assert.Equal(t, 500, cfg.Validation.NSplits)
	assert.Equal(t, 0.3, cfg.Validation.TestSize)
	require.NotNil(t, cfg.Validation.SplitSeed)
	assert.Equal(t, uint64(42), *cfg.Validation.SplitSeed)
	require.NotNil(t, cfg.Validation.ResampleSeed)
	assert.Equal(t, uint64(7), *cfg.Validation.ResampleSeed)
	assert.False(t, cfg.Validation.ResampleTest)
	assert.Equal(t, int64(4), cfg.Validation.MaxParallel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LOG_LEVEL", "loud"},
		{"N_SPLITS", "0"},
		{"N_SPLITS", "ten"},
		{"TEST_SIZE", "1"},
		{"TEST_SIZE", "0"},
		{"SPLIT_SEED", "-1"},
		{"RESAMPLE_SIZE", "-0.5"},
		{"MAX_PARALLEL_SHARDS", "0"},
		{"BOOTSTRAP_N", "0"},
		{"OUTPUT_FORMAT", "parquet"},
		{"OUTPUT_FORMAT", "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
