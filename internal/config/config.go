package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve on hosts without a zoneinfo database

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"schedcal/internal/fsutil"
	appLog "schedcal/internal/log"
)

const (
	defaultListen         = "127.0.0.1:8080"
	defaultTimezone       = "Asia/Seoul"
	defaultDataPath       = "./var/events.json"
	defaultLogLevel       = "info"
	defaultNotifySchedule = "*/10 * * * * *"
	defaultOverlapHorizon = 365
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone event dates and times are interpreted in
	// (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DataPath is the JSON event store. Empty keeps events in memory only.
	DataPath string `yaml:"data_path" json:"data_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// NotifySchedule is a cron spec with a seconds field used to poll for
	// upcoming events.
	NotifySchedule string `yaml:"notify_schedule" json:"notify_schedule"`

	// OverlapHorizonDays bounds how far ahead recurring series are expanded
	// when checking a new event for overlaps.
	OverlapHorizonDays int `yaml:"overlap_horizon_days" json:"overlap_horizon_days"`

	// Holidays adds or overrides entries of the built-in holiday table,
	// keyed by "YYYY-MM-DD".
	Holidays map[string]string `yaml:"holidays" json:"holidays"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             defaultListen,
		Timezone:           defaultTimezone,
		DataPath:           defaultDataPath,
		LogLevel:           defaultLogLevel,
		NotifySchedule:     defaultNotifySchedule,
		OverlapHorizonDays: defaultOverlapHorizon,
		Holidays:           map[string]string{},
	}
}

// cronParser matches cron.New(cron.WithSeconds()).
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Normalize fills in missing or invalid values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	} else if _, err := time.LoadLocation(c.Timezone); err != nil {
		appLog.Warn("unknown timezone; using default", "timezone", c.Timezone, "default", defaultTimezone)
		c.Timezone = defaultTimezone
	}
	c.LogLevel = strings.ToLower(string(appLog.ParseLevel(c.LogLevel)))
	if c.NotifySchedule == "" {
		c.NotifySchedule = defaultNotifySchedule
	} else if _, err := cronParser.Parse(c.NotifySchedule); err != nil {
		appLog.Warn("invalid notify_schedule; using default", "schedule", c.NotifySchedule, "err", err)
		c.NotifySchedule = defaultNotifySchedule
	}
	if c.OverlapHorizonDays <= 0 {
		c.OverlapHorizonDays = defaultOverlapHorizon
	}
	if c.Holidays == nil {
		c.Holidays = map[string]string{}
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Warn("failed to load timezone; falling back to local", "timezone", c.Timezone, "err", err)
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Caller decides whether a read-only config dir is fatal.
				return cfg, err
			}
			appLog.Info("default config written", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save normalizes cfg and writes it to path with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	return nil
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
