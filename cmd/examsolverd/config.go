package main

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// config describes the examsolverd YAML configuration.
type config struct {
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Model struct {
		Name    string `yaml:"name"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"model"`
	Solver struct {
		Workers int `yaml:"workers"`
	} `yaml:"solver"`
	Images struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"images"`
}

// loadConfig reads the configuration file and applies defaults. A missing
// file at the default path is not an error; the daemon then runs on
// defaults and environment variables alone.
func loadConfig(path string, explicit bool) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return applyDefaults(cfg), nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return applyDefaults(cfg), nil
}

// applyDefaults fills unset configuration fields.
func applyDefaults(cfg config) config {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	return cfg
}

// imageTimeout converts the configured fetch timeout to a duration.
func imageTimeout(cfg config) time.Duration {
	if cfg.Images.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(cfg.Images.TimeoutSeconds) * time.Second
}
