package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	if pollInterval := os.Getenv("ACTIVITYMON_POLL_INTERVAL"); pollInterval != "" {
		if seconds, err := strconv.Atoi(pollInterval); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = interval
			}
		}
	}

	if autoReport := os.Getenv("ACTIVITYMON_AUTO_REPORT"); autoReport != "" {
		if val, err := strconv.ParseBool(autoReport); err == nil {
			cfg.Tracker.AutoReport = val
		}
	}

	if baseURL := os.Getenv("ACTIVITYMON_API_URL"); baseURL != "" {
		cfg.Reporter.BaseURL = baseURL
	}

	if timeout := os.Getenv("ACTIVITYMON_API_TIMEOUT"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.Reporter.Timeout = time.Duration(seconds) * time.Second
		}
	}

	if webHost := os.Getenv("ACTIVITYMON_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("ACTIVITYMON_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}

	if dbPath := os.Getenv("ACTIVITYMON_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if dbEnabled := os.Getenv("ACTIVITYMON_DB_ENABLED"); dbEnabled != "" {
		if val, err := strconv.ParseBool(dbEnabled); err == nil {
			cfg.Database.Enabled = val
		}
	}

	if retention := os.Getenv("ACTIVITYMON_DB_RETENTION"); retention != "" {
		if d, err := time.ParseDuration(retention); err == nil && d >= 0 {
			cfg.Database.Retention = d
		}
	}

	if pidFile := os.Getenv("ACTIVITYMON_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if level := os.Getenv("ACTIVITYMON_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if logFile := os.Getenv("ACTIVITYMON_LOG_FILE"); logFile != "" {
		cfg.Log.File = logFile
	}

	if redisURL := os.Getenv("ACTIVITYMON_REDIS_URL"); redisURL != "" {
		cfg.Events.RedisURL = redisURL
	}

	if channel := os.Getenv("ACTIVITYMON_REDIS_CHANNEL"); channel != "" {
		cfg.Events.RedisChannel = channel
	}
}

