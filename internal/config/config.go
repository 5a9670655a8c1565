package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Transport   TransportConfig   `yaml:"transport"`
	DB          DBConfig          `yaml:"db"`
	Log         LogConfig         `yaml:"log"`
	Auth        AuthConfig        `yaml:"auth"`
	Study       StudyConfig       `yaml:"study"`
	Sources     SourcesConfig     `yaml:"sources"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

type StudyConfig struct {
	// DailyCap is the most cards allowed into one day's queue.
	DailyCap int `yaml:"daily_cap"`
	// QueueLimit is the default next_cards page size.
	QueueLimit int `yaml:"queue_limit"`
	// DesiredRetention is the recall probability the scheduler targets.
	DesiredRetention float64 `yaml:"desired_retention"`
	// MaximumIntervalDays caps how far out a card can be scheduled.
	MaximumIntervalDays int `yaml:"maximum_interval_days"`
}

type SourcesConfig struct {
	// ReposDir is where git deck sources are mirrored.
	ReposDir string `yaml:"repos_dir"`
}

type MaintenanceConfig struct {
	// RebaseEnabled turns the nightly overdue rebase job on.
	RebaseEnabled bool `yaml:"rebase_enabled"`
	// RebaseAt is the local time of day the job runs, "HH:MM".
	RebaseAt string `yaml:"rebase_at"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "recollect.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Study: StudyConfig{
			DailyCap:            60,
			QueueLimit:          10,
			DesiredRetention:    0.9,
			MaximumIntervalDays: 36500,
		},
		Sources: SourcesConfig{
			ReposDir: "repos",
		},
		Maintenance: MaintenanceConfig{
			RebaseEnabled: false,
			RebaseAt:      "03:30",
		},
	}

	if path := os.Getenv("RECOLLECT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("RECOLLECT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("RECOLLECT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECOLLECT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("RECOLLECT_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("RECOLLECT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("RECOLLECT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if auth := os.Getenv("RECOLLECT_AUTH_ENABLED"); auth != "" {
		enabled, err := strconv.ParseBool(auth)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECOLLECT_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if capStr := os.Getenv("RECOLLECT_STUDY_DAILY_CAP"); capStr != "" {
		dailyCap, err := strconv.Atoi(capStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECOLLECT_STUDY_DAILY_CAP: %w", err)
		}
		cfg.Study.DailyCap = dailyCap
	}
	if reposDir := os.Getenv("RECOLLECT_REPOS_DIR"); reposDir != "" {
		cfg.Sources.ReposDir = reposDir
	}
	if rebase := os.Getenv("RECOLLECT_REBASE_ENABLED"); rebase != "" {
		enabled, err := strconv.ParseBool(rebase)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECOLLECT_REBASE_ENABLED: %w", err)
		}
		cfg.Maintenance.RebaseEnabled = enabled
	}

	if cfg.Transport.Mode != "stdio" && cfg.Transport.Mode != "http" {
		return Config{}, fmt.Errorf("invalid transport mode %q: must be stdio or http", cfg.Transport.Mode)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
