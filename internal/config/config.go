package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	Tracker  TrackerConfig  `yaml:"tracker"`
	Reporter ReporterConfig `yaml:"reporter"`
	Web      WebConfig      `yaml:"web"`
	Database DatabaseConfig `yaml:"database"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Log      LogConfig      `yaml:"log"`
	Events   EventsConfig   `yaml:"events"`
}

// TrackerConfig holds sampling behavior configuration
type TrackerConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"` // How often to sample the active window
	MinPollInterval time.Duration `yaml:"-"`
	MaxPollInterval time.Duration `yaml:"-"`
	AutoReport      bool          `yaml:"auto_report"` // Submit every sample to the backend
}

// ReporterConfig holds remote submission configuration
type ReporterConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WebConfig holds local command API configuration
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds diagnostics journal configuration
type DatabaseConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Path      string        `yaml:"path"`      // Empty means ~/.config/activitymon/diagnostics.db
	Retention time.Duration `yaml:"retention"` // Entries older than this are pruned at startup; 0 keeps everything
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"` // Empty means stderr
}

// EventsConfig holds event fan-out configuration
type EventsConfig struct {
	RedisURL         string `yaml:"redis_url"` // Empty disables the redis sink
	RedisChannel     string `yaml:"redis_channel"`
	SubscriberBuffer int    `yaml:"subscriber_buffer"`
}

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://productivityflow-backend.onrender.com"

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			PollInterval:    30 * time.Second,
			MinPollInterval: 10 * time.Second,
			MaxPollInterval: 300 * time.Second,
		},
		Reporter: ReporterConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Enabled:   true,
			Retention: 30 * 24 * time.Hour,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("%s/activitymon-%d.pid", os.TempDir(), os.Getuid()),
		},
		Log: LogConfig{
			Level: "info",
		},
		Events: EventsConfig{
			SubscriberBuffer: 16,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	u, err := url.Parse(c.Reporter.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("reporter base url must be an absolute http(s) url, got %q", c.Reporter.BaseURL)
	}

	if c.Reporter.Timeout <= 0 {
		return fmt.Errorf("reporter timeout must be positive")
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Database.Retention < 0 {
		return fmt.Errorf("database retention cannot be negative")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.Events.SubscriberBuffer < 1 {
		return fmt.Errorf("subscriber buffer must be at least 1")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// Address returns the host:port the command API listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// String returns a string representation of the config. Credentials never
// appear in it.
func (c *Config) String() string {
	redis := "disabled"
	if c.Events.RedisURL != "" {
		redis = c.Events.RedisChannel
	}
	return fmt.Sprintf(`Configuration:
  Tracker:
    Poll Interval: %v
    Auto Report: %v
  Reporter:
    Base URL: %s
    Timeout: %v
  Web:
    Address: %s
  Database:
    Enabled: %v
    Path: %s
    Retention: %v
  Daemon:
    PID File: %s
  Log:
    Level: %s
  Events:
    Redis: %s`,
		c.Tracker.PollInterval,
		c.Tracker.AutoReport,
		c.Reporter.BaseURL,
		c.Reporter.Timeout,
		c.Address(),
		c.Database.Enabled,
		c.Database.Path,
		c.Database.Retention,
		c.Daemon.PIDFile,
		c.Log.Level,
		redis,
	)
}
