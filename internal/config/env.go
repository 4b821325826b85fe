package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	// Memory configuration
	if baseAddr := os.Getenv("SCALERMON_BASE_ADDR"); baseAddr != "" {
		if addr, err := strconv.ParseUint(baseAddr, 0, 64); err == nil {
			cfg.Memory.BaseAddr = addr
		}
	}

	if bufSize := os.Getenv("SCALERMON_BUFFER_SIZE"); bufSize != "" {
		if size, err := strconv.Atoi(bufSize); err == nil && size > 0 {
			cfg.Memory.BufferSize = size
		}
	}

	if layout := os.Getenv("SCALERMON_LAYOUT"); layout != "" {
		cfg.Memory.Layout = layout
	}

	// Monitor configuration
	if pollInterval := os.Getenv("SCALERMON_POLL_INTERVAL"); pollInterval != "" {
		if ms, err := strconv.Atoi(pollInterval); err == nil && ms > 0 {
			interval := time.Duration(ms) * time.Millisecond
			if interval >= cfg.Monitor.MinPollInterval && interval <= cfg.Monitor.MaxPollInterval {
				cfg.Monitor.PollInterval = interval
			}
		}
	}

	if step := os.Getenv("SCALERMON_SAMPLE_STEP"); step != "" {
		if s, err := strconv.Atoi(step); err == nil && s >= 1 && s <= 64 {
			cfg.Monitor.SampleStep = s
		}
	}

	if fine := os.Getenv("SCALERMON_FINE_HISTOGRAM"); fine != "" {
		if val, err := strconv.ParseBool(fine); err == nil {
			cfg.Monitor.FineHistogram = val
		}
	}

	// Database configuration
	if dbPath := os.Getenv("SCALERMON_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Daemon configuration
	if pidFile := os.Getenv("SCALERMON_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Snapshot configuration
	if dir := os.Getenv("SCALERMON_SNAPSHOT_DIR"); dir != "" {
		cfg.Snapshot.Dir = dir
	}

	if width := os.Getenv("SCALERMON_SNAPSHOT_SCALE_WIDTH"); width != "" {
		if w, err := strconv.Atoi(width); err == nil && w >= 0 {
			cfg.Snapshot.ScaleWidth = w
		}
	}

	// Report configuration
	if timeZone := os.Getenv("SCALERMON_TIMEZONE"); timeZone != "" {
		cfg.Report.TimeZone = timeZone
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
