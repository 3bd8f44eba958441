package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/disruption/pkg/domain/services"
)

// Source kinds for snapshot loading
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config is the deployment configuration. Zero values in a YAML file fall
// back to Default; DISRUPTION_* environment variables override both.
type Config struct {
	Source      string         `yaml:"source"`
	DataDir     string         `yaml:"data_dir"`
	DatabaseURL string         `yaml:"database_url"`
	Files       FilesConfig    `yaml:"files"`
	Transit     TransitConfig  `yaml:"transit"`
	Planning    PlanningConfig `yaml:"planning"`
	Coverage    CoverageConfig `yaml:"coverage"`
	Logging     LoggingConfig  `yaml:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	// Schema overrides column aliases: table -> field -> aliases
	Schema map[string]map[string][]string `yaml:"schema"`
}

// FilesConfig names the CSV files inside DataDir
type FilesConfig struct {
	Stock        string `yaml:"stock"`
	Locations    string `yaml:"locations"`
	Orders       string `yaml:"orders"`
	Capabilities string `yaml:"capabilities"`
	Bom          string `yaml:"bom"`
}

// TransitConfig declares the constant transit speed. SpeedKmh wins over Profile.
type TransitConfig struct {
	SpeedKmh float64 `yaml:"speed_kmh"`
	Profile  string  `yaml:"profile"`
}

// PlanningConfig tunes the allocation engine
type PlanningConfig struct {
	DefaultHorizonDays int     `yaml:"default_horizon_days"`
	Workers            int     `yaml:"workers"`
	Mode               string  `yaml:"mode"`
	SLATargetPct       float64 `yaml:"sla_target_pct"`
}

// CoverageConfig sets the default coverage horizon
type CoverageConfig struct {
	HorizonDays int `yaml:"horizon_days"`
}

// LoggingConfig controls the zerolog output
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Source:  SourceCSV,
		DataDir: "data",
		Files: FilesConfig{
			Stock:        "inventory.csv",
			Locations:    "plants.csv",
			Orders:       "orders.csv",
			Capabilities: "plant_material.csv",
			Bom:          "material_component.csv",
		},
		Transit: TransitConfig{Profile: "ground"},
		Planning: PlanningConfig{
			Mode:         "independent",
			SLATargetPct: 95,
		},
		Coverage: CoverageConfig{HorizonDays: 7},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads an optional YAML file, applies environment overrides and validates
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DISRUPTION_* variables
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("DISRUPTION_SOURCE", &c.Source)
	str("DISRUPTION_DATA_DIR", &c.DataDir)
	str("DISRUPTION_DATABASE_URL", &c.DatabaseURL)
	str("DISRUPTION_TRANSIT_PROFILE", &c.Transit.Profile)
	str("DISRUPTION_MODE", &c.Planning.Mode)
	str("DISRUPTION_LOG_LEVEL", &c.Logging.Level)
	str("DISRUPTION_METRICS_FILE", &c.Metrics.TextfilePath)

	if v := strings.TrimSpace(getenv("DISRUPTION_SPEED_KMH")); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid DISRUPTION_SPEED_KMH: %w", err)
		}
		c.Transit.SpeedKmh = speed
	}
	if v := strings.TrimSpace(getenv("DISRUPTION_LOG_PRETTY")); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DISRUPTION_LOG_PRETTY: %w", err)
		}
		c.Logging.Pretty = pretty
	}
	if err := integer("DISRUPTION_HORIZON_DAYS", &c.Planning.DefaultHorizonDays); err != nil {
		return err
	}
	if err := integer("DISRUPTION_COVERAGE_DAYS", &c.Coverage.HorizonDays); err != nil {
		return err
	}
	if err := integer("DISRUPTION_WORKERS", &c.Planning.Workers); err != nil {
		return err
	}
	return nil
}

// Validate checks value ranges and required fields
func (c Config) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.DataDir == "" {
			return fmt.Errorf("data_dir cannot be empty for csv source")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for postgres source")
		}
	default:
		return fmt.Errorf("unknown source: %s", c.Source)
	}

	if c.Transit.SpeedKmh < 0 {
		return fmt.Errorf("transit speed cannot be negative, got %v", c.Transit.SpeedKmh)
	}
	if c.Planning.DefaultHorizonDays < 0 {
		return fmt.Errorf("default horizon cannot be negative, got %d", c.Planning.DefaultHorizonDays)
	}
	if c.Planning.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", c.Planning.Workers)
	}
	if c.Planning.SLATargetPct < 0 || c.Planning.SLATargetPct > 100 {
		return fmt.Errorf("sla target must be between 0 and 100, got %v", c.Planning.SLATargetPct)
	}
	if c.Coverage.HorizonDays < 1 {
		return fmt.Errorf("coverage horizon must be at least 1 day, got %d", c.Coverage.HorizonDays)
	}
	return nil
}

// DefaultHorizon is the planning horizon applied to events without one; 0 is unbounded
func (c Config) DefaultHorizon() time.Duration {
	return time.Duration(c.Planning.DefaultHorizonDays) * 24 * time.Hour
}

// SpeedKmh resolves the transit speed: an explicit speed wins, else the profile's
func (c Config) SpeedKmh() (float64, error) {
	if c.Transit.SpeedKmh > 0 {
		return c.Transit.SpeedKmh, nil
	}
	return services.SpeedForProfile(c.Transit.Profile)
}
