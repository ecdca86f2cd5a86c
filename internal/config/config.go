package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

type OracleConfig struct {
	Model          string `json:"model"`
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	QueueSize      int    `json:"queue_size"`
	MaxConcurrent  int    `json:"max_concurrent"`
}

type OnboardingConfig struct {
	CompletionThreshold    float64 `json:"completion_threshold"`
	HistoryWindow          int     `json:"history_window"`
	FollowUpRate           float64 `json:"follow_up_rate"`
	StorageCompletePercent int     `json:"storage_complete_percent"`
}

type Config struct {
	Server struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Subpath   string `json:"subpath"`
		JWTSecret string `json:"jwtSecret"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Oracle     OracleConfig     `json:"oracle"`
	Onboarding OnboardingConfig `json:"onboarding"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		applyDefaults(&c)
		cfg = &c
	})
	return cfg, cfgErr
}

func applyDefaults(c *Config) {
	if c.Oracle.TimeoutSeconds <= 0 {
		c.Oracle.TimeoutSeconds = 30
	}
	if c.Oracle.QueueSize <= 0 {
		c.Oracle.QueueSize = 32
	}
	if c.Oracle.MaxConcurrent <= 0 {
		c.Oracle.MaxConcurrent = 4
	}
	if c.Onboarding.CompletionThreshold <= 0 {
		c.Onboarding.CompletionThreshold = 0.75
	}
	if c.Onboarding.HistoryWindow <= 0 {
		c.Onboarding.HistoryWindow = 3
	}
	if c.Onboarding.FollowUpRate < 0 || c.Onboarding.FollowUpRate > 1 {
		c.Onboarding.FollowUpRate = 0.3
	}
	if c.Onboarding.StorageCompletePercent <= 0 {
		c.Onboarding.StorageCompletePercent = 80
	}
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
