package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashbench/ftlsim/internal/metrics"
)

// validConfig returns a Config that passes Validate unmodified, so each
// test below can tweak exactly one field to provoke exactly one error.
func validConfig() *Config {
	return &Config{
		NumBlocks:          4,
		PagesPerBlock:      4,
		UserCapacityRatio:  0.5,
		ReservedFreeBlocks: 1,
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.Validate())

	assert.Equal(t, defaultNumBlocks, c.NumBlocks)
	assert.Equal(t, defaultPagesPerBlock, c.PagesPerBlock)
	assert.Equal(t, defaultUserCapacityRatio, c.UserCapacityRatio)
	assert.Equal(t, defaultPolicyName, c.Policy)
	require.NotNil(t, c.GCFreeBlockThreshold)
	assert.Equal(t, defaultGCThreshold, *c.GCFreeBlockThreshold)
	assert.Equal(t, metrics.IOProfileDefault, c.IOProfile)
}

// TestValidatePreservesExplicitZeroThreshold guards against the defaulting
// bug where an unset *float64 and an explicit 0.0 were indistinguishable:
// spec.md's S1 scenario requires gc_free_block_threshold=0.0 to survive
// Validate unchanged, not be silently replaced by defaultGCThreshold.
func TestValidatePreservesExplicitZeroThreshold(t *testing.T) {
	c := validConfig()
	zero := 0.0
	c.GCFreeBlockThreshold = &zero

	require.NoError(t, c.Validate())
	require.NotNil(t, c.GCFreeBlockThreshold)
	assert.Equal(t, 0.0, *c.GCFreeBlockThreshold)
	assert.Equal(t, 0.0, c.SimulatorConfig().Threshold)
}

func TestValidateDefaultsUnsetThreshold(t *testing.T) {
	c := validConfig()
	c.GCFreeBlockThreshold = nil

	require.NoError(t, c.Validate())
	require.NotNil(t, c.GCFreeBlockThreshold)
	assert.Equal(t, defaultGCThreshold, *c.GCFreeBlockThreshold)
}

func TestValidateUserTotalPagesBoundary(t *testing.T) {
	c := validConfig()
	c.NumBlocks = 4
	c.PagesPerBlock = 4
	c.UserCapacityRatio = 0.5 // 16 * 0.5 = 8, strictly less than 16: ok

	require.NoError(t, c.Validate())
	assert.Equal(t, uint64(8), c.UserTotalPages)
}

func TestValidateUserTotalPagesBoundaryViolation(t *testing.T) {
	c := validConfig()
	c.NumBlocks = 4
	c.PagesPerBlock = 4
	c.UserCapacityRatio = 1.0 // derives to exactly num_blocks*pages_per_block

	err := c.Validate()
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "user_capacity_ratio", cfgErr.Field)
}

func TestValidateRejectsOutOfRangeFields(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"num_blocks too low", func(c *Config) { c.NumBlocks = -1 }, "num_blocks"},
		{"pages_per_block too low", func(c *Config) { c.PagesPerBlock = -1 }, "pages_per_block"},
		{"user_capacity_ratio too low", func(c *Config) { c.UserCapacityRatio = -0.1 }, "user_capacity_ratio"},
		{"user_capacity_ratio too high", func(c *Config) { c.UserCapacityRatio = 1.5 }, "user_capacity_ratio"},
		{"gc_free_block_threshold negative", func(c *Config) {
			v := -0.1
			c.GCFreeBlockThreshold = &v
		}, "gc_free_block_threshold"},
		{"gc_free_block_threshold too high", func(c *Config) {
			v := 1.0
			c.GCFreeBlockThreshold = &v
		}, "gc_free_block_threshold"},
		{"ewma_lambda too low", func(c *Config) { c.EWMALambda = -0.1 }, "ewma_lambda"},
		{"ewma_lambda too high", func(c *Config) { c.EWMALambda = 1.1 }, "ewma_lambda"},
		{"reserved_free_blocks negative", func(c *Config) { c.ReservedFreeBlocks = -1 }, "reserved_free_blocks"},
		{"bg_gc_every negative", func(c *Config) { c.BGGCEvery = -1 }, "bg_gc_every"},
		{"warmup_fill negative", func(c *Config) { c.WarmupFill = -0.1 }, "warmup_fill"},
		{"warmup_fill too high", func(c *Config) { c.WarmupFill = 1.0 }, "warmup_fill"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)

			err := c.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.wantField, cfgErr.Field)
		})
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := newConfigError("num_blocks", "must be >= 1")
	assert.Equal(t, `invalid configuration field "num_blocks": must be >= 1`, err.Error())
}

func TestNewConfigReadsFileAndOverlaysEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: bsgc\nnum_blocks: 8\n"), 0o644))

	t.Setenv("FTLSIM_POLICY", "greedy")
	t.Setenv("FTLSIM_RNG_SEED", "42")

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "greedy", cfg.Policy) // env overlay wins over file
	assert.Equal(t, 8, cfg.NumBlocks)     // file value preserved
	assert.Equal(t, int64(42), cfg.RNGSeed)
}

func TestNewConfigMissingFileReturnsError(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioOverlaysOntoExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: cat\nops: 5000\n"), 0o644))

	cfg := validConfig()
	cfg.Policy = "greedy"
	cfg.Ops = 100

	require.NoError(t, LoadScenario(path, cfg))
	assert.Equal(t, "cat", cfg.Policy)
	assert.Equal(t, 5000, cfg.Ops)
	// Fields the scenario file doesn't mention are left untouched.
	assert.Equal(t, 4, cfg.NumBlocks)
}
