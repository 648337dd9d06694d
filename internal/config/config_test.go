package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Simulation.NumMotes = 5
	cfg.Simulation.SamplingInterval = 2.0
	cfg.Simulation.Duration = 60.0
	cfg.Simulation.Retention = 100
	cfg.Simulation.SpikeProbability = 0.05
	cfg.Thresholds.PM25Safe = 25.0
	cfg.Thresholds.PM10Safe = 50.0
	return cfg
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero motes", func(c *Config) { c.Simulation.NumMotes = 0 }, "simulation.num_motes"},
		{"negative interval", func(c *Config) { c.Simulation.SamplingInterval = -1 }, "simulation.sampling_interval"},
		{"zero interval", func(c *Config) { c.Simulation.SamplingInterval = 0 }, "simulation.sampling_interval"},
		{"negative duration", func(c *Config) { c.Simulation.Duration = -5 }, "simulation.duration"},
		{"zero retention", func(c *Config) { c.Simulation.Retention = 0 }, "simulation.retention"},
		{"spike probability above 1", func(c *Config) { c.Simulation.SpikeProbability = 1.5 }, "simulation.spike_probability"},
		{"zero pm25 threshold", func(c *Config) { c.Thresholds.PM25Safe = 0 }, "thresholds.pm25_safe"},
		{"negative pm10 threshold", func(c *Config) { c.Thresholds.PM10Safe = -1 }, "thresholds.pm10_safe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestValidate_ZeroDurationMeansUnbounded(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.Duration = 0
	assert.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.RunDuration())
}

func TestConversions(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.SamplingInterval = 0.5
	cfg.Simulation.Duration = 90

	assert.Equal(t, 500*time.Millisecond, cfg.Interval())
	assert.Equal(t, 90*time.Second, cfg.RunDuration())

	thresholds := cfg.SafeThresholds()
	assert.Equal(t, 25.0, thresholds.PM25Safe)
	assert.Equal(t, 50.0, thresholds.PM10Safe)
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Simulation.NumMotes)
	assert.Equal(t, 2*time.Second, cfg.Interval())
	assert.Equal(t, 25.0, cfg.Thresholds.PM25Safe)
	assert.Equal(t, 50.0, cfg.Thresholds.PM10Safe)
	assert.Equal(t, 100, cfg.Simulation.Retention)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	yaml := `
server:
  port: 9090
simulation:
  num_motes: 12
  sampling_interval: 0.25
  duration: 0
thresholds:
  pm25_safe: 15.0
auth:
  api_keys:
    - test-key
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Simulation.NumMotes)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval())
	assert.Zero(t, cfg.RunDuration(), "duration 0 runs until stopped")
	assert.Equal(t, 15.0, cfg.Thresholds.PM25Safe)
	assert.Equal(t, 50.0, cfg.Thresholds.PM10Safe, "unset fields keep defaults")
	assert.Equal(t, []string{"test-key"}, cfg.Auth.APIKeys)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	yaml := `
simulation:
  num_motes: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	_, err := Load(dir)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "simulation.num_motes", vErr.Field)
}
