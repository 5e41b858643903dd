package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/sdejongh/doppelganger/internal/platform"
	"github.com/sdejongh/doppelganger/pkg/config"
	"github.com/sdejongh/doppelganger/pkg/models"
	"github.com/sdejongh/doppelganger/pkg/output"
)

// validateHuntFlags validates the hunt command flags
func validateHuntFlags() error {
	if err := platform.ValidatePath(huntFlags.Root); err != nil {
		return fmt.Errorf("invalid root path: %w", err)
	}

	// A missing root is walked as empty and reported by the hunt
	info, err := os.Stat(huntFlags.Root)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to access root path: %w", err)
	} else if err == nil && !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", huntFlags.Root)
	}

	if huntFlags.Output != "" {
		validOutputs := map[string]bool{
			output.FormatHuman: true,
			output.FormatHash:  true,
			output.FormatJSON:  true,
		}
		if !validOutputs[huntFlags.Output] {
			return fmt.Errorf("invalid output format: %s (valid: human, hash, json)", huntFlags.Output)
		}
	}

	if huntFlags.Parallel < 0 {
		return fmt.Errorf("invalid parallel value: %d (must be positive)", huntFlags.Parallel)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// parseSize parses a human byte size such as "10M" or "1.5GiB"
func parseSize(flag, value string) (int64, error) {
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", flag, value, err)
	}
	return int64(n), nil
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) error {
	if huntFlags.SkipHidden {
		cfg.Hunt.SkipHidden = true
	}

	if huntFlags.UseSQLite {
		cfg.Hunt.Index = models.IndexExternal
	}

	if huntFlags.Delete {
		cfg.Hunt.DeleteDuplicates = true
	}

	// Parallel workers
	if huntFlags.Parallel > 0 {
		cfg.Performance.MaxWorkers = huntFlags.Parallel
	}

	if huntFlags.Bandwidth != "" {
		limit, err := parseSize("bandwidth", huntFlags.Bandwidth)
		if err != nil {
			return err
		}
		cfg.Performance.BandwidthLimit = limit
	}

	if huntFlags.VerifyMemory != "" {
		limit, err := parseSize("verify-memory", huntFlags.VerifyMemory)
		if err != nil {
			return err
		}
		cfg.Performance.VerifyMemoryLimit = limit
	}

	if huntFlags.ScratchDir != "" {
		cfg.Index.ScratchDir = huntFlags.ScratchDir
	}

	// Exclude patterns
	if len(huntFlags.Exclude) > 0 {
		cfg.Exclude = huntFlags.Exclude
	}

	// Output
	if huntFlags.Output != "" {
		cfg.Output.Format = huntFlags.Output
	}
	if huntFlags.ReportFile != "" {
		cfg.Output.ReportFile = huntFlags.ReportFile
	}

	// Logging
	if huntFlags.LogFile != "" {
		cfg.Logging.File = huntFlags.LogFile
	}
	if huntFlags.LogFormat != "" {
		cfg.Logging.Format = huntFlags.LogFormat
	}
	if huntFlags.LogLevel != "" {
		cfg.Logging.Level = huntFlags.LogLevel
	}

	// Disable progress and summary in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
		cfg.Logging.Level = "error"
	}

	// Verbose mode logs progress details
	if globalFlags.Verbose {
		cfg.Output.Progress = true
		if huntFlags.LogLevel == "" {
			cfg.Logging.Level = "info"
		}
	}

	return cfg.Validate()
}

// createHuntOperation creates a hunt operation from configuration
func createHuntOperation(cfg *config.Config) (*models.HuntOperation, error) {
	operation := &models.HuntOperation{
		ID:                uuid.New().String(),
		Root:              huntFlags.Root,
		SkipHidden:        cfg.Hunt.SkipHidden,
		IndexKind:         cfg.Hunt.Index,
		Exclude:           cfg.Exclude,
		DeleteDuplicates:  cfg.Hunt.DeleteDuplicates,
		MaxWorkers:        cfg.Performance.MaxWorkers,
		BufferSize:        cfg.Performance.BufferSize,
		VerifyMemoryLimit: cfg.Performance.VerifyMemoryLimit,
		BandwidthLimit:    cfg.Performance.BandwidthLimit,
		ScratchDir:        cfg.Index.ScratchDir,
		CreatedAt:         time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}
