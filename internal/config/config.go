// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/malikhammadd/dust-detector/internal/auth"
	"github.com/malikhammadd/dust-detector/internal/data"
)

type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Simulation struct {
		NumMotes         int     `mapstructure:"num_motes"`
		SamplingInterval float64 `mapstructure:"sampling_interval"` // seconds
		Duration         float64 `mapstructure:"duration"`          // seconds, 0 = run until stopped
		Retention        int     `mapstructure:"retention"`         // readings kept per mote
		Seed             int64   `mapstructure:"seed"`              // 0 = derive from wall clock
		SpikeProbability float64 `mapstructure:"spike_probability"` // chance per tick of a pollution spike
	} `mapstructure:"simulation"`
	Thresholds struct {
		PM25Safe float64 `mapstructure:"pm25_safe"`
		PM10Safe float64 `mapstructure:"pm10_safe"`
	} `mapstructure:"thresholds"`
	Auth auth.Config `mapstructure:"auth"`
}

// ValidationError reports an invalid configuration value. It is the
// only error class the pipeline raises, and only before a run starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func Load(path string) (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AutomaticEnv() // read in environment variables that match

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Missing file is fine, defaults apply. Other read errors are not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("simulation.num_motes", 5)
	viper.SetDefault("simulation.sampling_interval", 2.0)
	viper.SetDefault("simulation.duration", 60.0)
	viper.SetDefault("simulation.retention", 100)
	viper.SetDefault("simulation.seed", 0)
	viper.SetDefault("simulation.spike_probability", 0.05)
	viper.SetDefault("thresholds.pm25_safe", 25.0)
	viper.SetDefault("thresholds.pm10_safe", 50.0)
	viper.SetDefault("auth.jwt_expiration", 60)
}

// Validate rejects zero or negative values before a run starts.
// Nothing after Start validates again.
func (c *Config) Validate() error {
	if c.Simulation.NumMotes < 1 {
		return &ValidationError{"simulation.num_motes", "must be at least 1"}
	}
	if c.Simulation.SamplingInterval <= 0 {
		return &ValidationError{"simulation.sampling_interval", "must be positive"}
	}
	if c.Simulation.Duration < 0 {
		return &ValidationError{"simulation.duration", "must be positive or 0 for unbounded"}
	}
	if c.Simulation.Retention < 1 {
		return &ValidationError{"simulation.retention", "must be at least 1"}
	}
	if c.Simulation.SpikeProbability < 0 || c.Simulation.SpikeProbability > 1 {
		return &ValidationError{"simulation.spike_probability", "must be in [0, 1]"}
	}
	if c.Thresholds.PM25Safe <= 0 {
		return &ValidationError{"thresholds.pm25_safe", "must be positive"}
	}
	if c.Thresholds.PM10Safe <= 0 {
		return &ValidationError{"thresholds.pm10_safe", "must be positive"}
	}
	return nil
}

// Interval returns the sampling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Simulation.SamplingInterval * float64(time.Second))
}

// RunDuration returns how long the simulation runs; zero means until stopped.
func (c *Config) RunDuration() time.Duration {
	return time.Duration(c.Simulation.Duration * float64(time.Second))
}

// SafeThresholds returns the pollutant limits as the data-layer value type.
func (c *Config) SafeThresholds() data.Thresholds {
	return data.Thresholds{
		PM25Safe: c.Thresholds.PM25Safe,
		PM10Safe: c.Thresholds.PM10Safe,
	}
}
