package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Scaler memory region
	Memory MemoryConfig

	// Monitor behavior
	Monitor MonitorConfig

	// Database configuration
	Database DatabaseConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Snapshot configuration
	Snapshot SnapshotConfig

	// Report configuration
	Report ReportConfig
}

// MemoryConfig describes the physical region the scaler writes.
type MemoryConfig struct {
	BaseAddr   uint64 // Physical base address of the scaler buffer
	BufferSize int    // Mapped size in bytes
	Layout     string // Hardware header revision ("v1", "v2")
}

// MonitorConfig holds poll-loop and sampling behavior.
type MonitorConfig struct {
	PollInterval    time.Duration // Frame-counter poll interval
	MinPollInterval time.Duration // Minimum allowed poll interval
	MaxPollInterval time.Duration // Maximum allowed poll interval
	SampleStep      int           // Grid step in pixels on both axes
	JitterX         int           // Per-frame phase jitter, x axis
	JitterY         int           // Per-frame phase jitter, y axis
	FineHistogram   bool          // 5-6-5 bins instead of 4 bits per channel
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
}

// SnapshotConfig holds snapshot output configuration.
type SnapshotConfig struct {
	Dir        string // Directory snapshots are written to
	ScaleWidth int    // Width of the scaled copy; 0 disables it
}

// ReportConfig holds report generation configuration
type ReportConfig struct {
	TimeZone string
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			BaseAddr:   0x20000000,
			BufferSize: 2048 * 3 * 1024,
			Layout:     "v1",
		},
		Monitor: MonitorConfig{
			PollInterval:    10 * time.Millisecond,
			MinPollInterval: time.Millisecond,
			MaxPollInterval: time.Second,
			SampleStep:      16,
			JitterX:         7,
			JitterY:         11,
			FineHistogram:   false,
		},
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/scalermon/scalermon.db
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/scalermon-%d.pid", os.Getuid()),
		},
		Snapshot: SnapshotConfig{
			Dir:        "/tmp/snapshots",
			ScaleWidth: 0,
		},
		Report: ReportConfig{
			TimeZone: "Local",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Memory.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.Memory.BufferSize)
	}

	if c.Monitor.PollInterval < c.Monitor.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Monitor.PollInterval, c.Monitor.MinPollInterval)
	}

	if c.Monitor.PollInterval > c.Monitor.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Monitor.PollInterval, c.Monitor.MaxPollInterval)
	}

	if c.Monitor.SampleStep < 1 || c.Monitor.SampleStep > 64 {
		return fmt.Errorf("sample step must be between 1 and 64, got %d", c.Monitor.SampleStep)
	}

	if c.Monitor.JitterX < 1 || c.Monitor.JitterY < 1 {
		return fmt.Errorf("jitter constants must be positive, got %d/%d",
			c.Monitor.JitterX, c.Monitor.JitterY)
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.Snapshot.Dir == "" {
		return fmt.Errorf("snapshot directory cannot be empty")
	}

	if c.Snapshot.ScaleWidth < 0 {
		return fmt.Errorf("snapshot scale width cannot be negative")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Monitor.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Monitor.MinPollInterval)
	}
	if interval > c.Monitor.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Monitor.MaxPollInterval)
	}
	c.Monitor.PollInterval = interval
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Memory:
    Base Address: 0x%X
    Buffer Size: %d
    Layout: %s
  Monitor:
    Poll Interval: %v
    Sample Step: %d
    Jitter: %d/%d
    Fine Histogram: %v
  Database:
    Path: %s
  Daemon:
    PID File: %s
  Snapshot:
    Dir: %s
    Scale Width: %d
  Report:
    Time Zone: %s`,
		c.Memory.BaseAddr,
		c.Memory.BufferSize,
		c.Memory.Layout,
		c.Monitor.PollInterval,
		c.Monitor.SampleStep,
		c.Monitor.JitterX,
		c.Monitor.JitterY,
		c.Monitor.FineHistogram,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Snapshot.Dir,
		c.Snapshot.ScaleWidth,
		c.Report.TimeZone,
	)
}
