package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// MemoryConfig holds in-memory/JSON run-storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SqliteConfig holds sqlite run-storage backend settings
type SqliteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the run-history backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	Sqlite SqliteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// SimConfig holds the simulation tuning knobs passed to every
// computation.
type SimConfig struct {
	PhysicsTick    float64 `json:"physicsTick" mapstructure:"physicsTick"`
	SurfaceGravity float64 `json:"surfaceGravity" mapstructure:"surfaceGravity"`
	StrictFairings bool    `json:"strictFairings" mapstructure:"strictFairings"`
	PlateKeepTag   string  `json:"plateKeepTag" mapstructure:"plateKeepTag"`
	PlateDropTag   string  `json:"plateDropTag" mapstructure:"plateDropTag"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./stagesim-logs")

	viper.SetDefault("sim.physicsTick", 0.02)
	viper.SetDefault("sim.surfaceGravity", 9.80665)
	viper.SetDefault("sim.strictFairings", false)
	viper.SetDefault("sim.plateKeepTag", "keep")
	viper.SetDefault("sim.plateDropTag", "drop")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./stagesim-runs")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./stagesim-runs.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "stagesim")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "stagesim-metrics")
	viper.SetDefault("influx.bucket", "stage_runs")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("stagesim.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	// A missing config file means defaults only.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %v", err)
		}
	}

	return nil
}

// Sim returns the decoded simulation configuration.
func Sim() (SimConfig, error) {
	var cfg SimConfig
	if err := viper.UnmarshalKey("sim", &cfg); err != nil {
		return cfg, fmt.Errorf("error decoding sim config: %w", err)
	}
	return cfg, nil
}

// Storage returns the decoded storage configuration.
func Storage() (StorageConfig, error) {
	var cfg StorageConfig
	if err := viper.UnmarshalKey("storage", &cfg); err != nil {
		return cfg, fmt.Errorf("error decoding storage config: %w", err)
	}
	return cfg, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}
