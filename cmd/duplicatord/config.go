package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all duplicatord configuration.
type Config struct {
	Listen      string `yaml:"listen"`
	OutputDir   string `yaml:"output_dir"`
	WorkDir     string `yaml:"work_dir"`
	DBPath      string `yaml:"db_path"`
	Lexicon     string `yaml:"lexicon"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
	MaxCopies   int    `yaml:"max_copies"`
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8087"
	}
	if c.OutputDir == "" {
		c.OutputDir = "./bundles"
	}
	if c.DBPath == "" {
		c.DBPath = "duplicator.db"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 256
	}
	if c.MaxCopies <= 0 {
		c.MaxCopies = 20
	}
}

func (c *Config) maxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// loadConfig reads a YAML config file; an empty path yields defaults.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.defaults()
	return cfg, nil
}
