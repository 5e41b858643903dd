package config

import (
	"github.com/sdejongh/doppelganger/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Hunt        HuntConfig        `yaml:"hunt"`
	Performance PerformanceConfig `yaml:"performance"`
	Index       IndexConfig       `yaml:"index"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// HuntConfig holds hunt-related settings
type HuntConfig struct {
	SkipHidden       bool             `yaml:"skip_hidden"`
	Index            models.IndexKind `yaml:"index"`             // "memory" or "external"
	DeleteDuplicates bool             `yaml:"delete_duplicates"` // accepted, no effect
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers        int   `yaml:"max_workers"`
	BufferSize        int   `yaml:"buffer_size"`
	VerifyMemoryLimit int64 `yaml:"verify_memory_limit"`
	BandwidthLimit    int64 `yaml:"bandwidth_limit"`
}

// IndexConfig holds external index settings
type IndexConfig struct {
	ScratchDir string `yaml:"scratch_dir"` // empty = system temp dir
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format     string `yaml:"format"`      // "human", "hash" or "json"
	Progress   bool   `yaml:"progress"`    // Show progress bars on a terminal
	Quiet      bool   `yaml:"quiet"`       // Suppress the summary
	ReportFile string `yaml:"report_file"` // Also write clusters to this file
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	File   string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Hunt: HuntConfig{
			SkipHidden:       false,
			Index:            models.IndexMemory,
			DeleteDuplicates: false,
		},
		Performance: PerformanceConfig{
			MaxWorkers:        8,
			BufferSize:        65536,
			VerifyMemoryLimit: 16 * 1024 * 1024,
			BandwidthLimit:    0,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "warn",
			File:   "",
		},
		Exclude: []string{},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Hunt.Index != models.IndexMemory && c.Hunt.Index != models.IndexExternal {
		return &models.ValidationError{
			Field:   "hunt.index",
			Message: "must be 'memory' or 'external'",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.VerifyMemoryLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.verify_memory_limit",
			Message: "cannot be negative",
		}
	}

	if c.Performance.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "cannot be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "hash": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human', 'hash' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
