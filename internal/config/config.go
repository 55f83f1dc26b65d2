package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Trivia struct {
		URL       string `yaml:"url"`
		Category  int    `yaml:"category"`
		BatchSize int    `yaml:"batchSize"`
	} `yaml:"trivia"`
	Translate struct {
		Disabled bool   `yaml:"disabled"`
		URL      string `yaml:"url"`
		Source   string `yaml:"source"`
		Target   string `yaml:"target"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"translate"`
	Session struct {
		RoundSeconds int    `yaml:"roundSeconds"`
		AdvanceDelay string `yaml:"advanceDelay"`
		TimeoutGrace string `yaml:"timeoutGrace"`
	} `yaml:"session"`
}

// Load reads YAML config from path. A .env file, if present, is loaded first
// so environment variables like PORT can come from it. A missing config file
// is not an error; every field has a usable default downstream.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DurationOr parses a duration string or returns the fallback if empty or
// invalid.
func DurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
