// Package config loads runtime settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "LIFEGOALS_CONFIG"

var ErrNoToken = errors.New("TELEGRAM_TOKEN is required")

// Config keeps runtime settings for the bot and the CLI reports.
type Config struct {
	TelegramToken          string `yaml:"telegram_token"`
	DatabaseURL            string `yaml:"database_url"`
	APIBaseURL             string `yaml:"api_base_url"`
	APITimeoutSeconds      int    `yaml:"api_timeout_seconds"`
	ReportTime             string `yaml:"report_time"`
	RefreshIntervalMinutes int    `yaml:"refresh_interval_minutes"`
	FocusMinutes           int    `yaml:"focus_minutes"`
	BreakMinutes           int    `yaml:"break_minutes"`
	Timezone               string `yaml:"timezone"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DatabaseURL:            "life_goals.db",
		APIBaseURL:             "http://127.0.0.1:8000/api",
		APITimeoutSeconds:      15,
		ReportTime:             "08:00",
		RefreshIntervalMinutes: 30,
		FocusMinutes:           25,
		BreakMinutes:           5,
		Timezone:               "Local",
	}
}

// Load reads the file named by LIFEGOALS_CONFIG, if set, and then applies
// environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = fromFile
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// LoadFile reads a YAML config over the defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&c.TelegramToken, "TELEGRAM_TOKEN")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.APIBaseURL, "API_BASE_URL")
	setString(&c.ReportTime, "REPORT_TIME")
	setString(&c.Timezone, "TIMEZONE")

	setInt := func(dst *int, key string) {
		if n := parsePositive(getenv(key)); n > 0 {
			*dst = n
		}
	}
	setInt(&c.APITimeoutSeconds, "API_TIMEOUT_SECONDS")
	setInt(&c.RefreshIntervalMinutes, "REFRESH_INTERVAL_MINUTES")
	setInt(&c.FocusMinutes, "FOCUS_MINUTES")
	setInt(&c.BreakMinutes, "BREAK_MINUTES")
}

// fillDefaults repairs zero or negative values left by a partial file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.DatabaseURL == "" {
		c.DatabaseURL = def.DatabaseURL
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = def.APIBaseURL
	}
	if c.APITimeoutSeconds <= 0 {
		c.APITimeoutSeconds = def.APITimeoutSeconds
	}
	if c.ReportTime == "" {
		c.ReportTime = def.ReportTime
	}
	if c.RefreshIntervalMinutes <= 0 {
		c.RefreshIntervalMinutes = def.RefreshIntervalMinutes
	}
	if c.FocusMinutes <= 0 {
		c.FocusMinutes = def.FocusMinutes
	}
	if c.BreakMinutes <= 0 {
		c.BreakMinutes = def.BreakMinutes
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
}

func parsePositive(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Validate checks settings required by the Telegram bot.
func (c Config) Validate() error {
	if c.TelegramToken == "" {
		return ErrNoToken
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, _, err := ParseClock(c.ReportTime); err != nil {
		return fmt.Errorf("report_time: %w", err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

// ParseClock parses "HH:MM".
func ParseClock(raw string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("parse time %q: %w", raw, err)
	}
	return t.Hour(), t.Minute(), nil
}
