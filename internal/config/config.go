package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log struct {
		Level string `yaml:"level"` // debug, info, warn, error
	} `yaml:"log"`
	History struct {
		DB string `yaml:"db"` // SQLite ledger path; empty disables the ledger
	} `yaml:"history"`
	Demo struct {
		SamplePath string `yaml:"sample_path"`
	} `yaml:"demo"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Log.Level = "warn"
	cfg.Demo.SamplePath = "sample_presentation.qmd"
	return &cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if level := os.Getenv("DOCSHIFT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if db := os.Getenv("DOCSHIFT_DB"); db != "" {
		cfg.History.DB = db
	}
	if sample := os.Getenv("DOCSHIFT_SAMPLE_PATH"); sample != "" {
		cfg.Demo.SamplePath = sample
	}

	return cfg, nil
}
