package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/doppelganger/pkg/hunt"
	"github.com/sdejongh/doppelganger/pkg/logging"
	"github.com/sdejongh/doppelganger/pkg/output"
	"github.com/sdejongh/doppelganger/pkg/storage"
)

// HuntFlags holds hunt command flags
type HuntFlags struct {
	Root         string
	SkipHidden   bool
	UseSQLite    bool
	Delete       bool
	Parallel     int
	Bandwidth    string
	VerifyMemory string
	ScratchDir   string
	Exclude      []string
	Output       string
	ReportFile   string

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var huntFlags HuntFlags

// NewHuntCommand creates the hunt command
func NewHuntCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hunt <path>",
		Short: "Find files with identical content",
		Long: `Walk a directory tree, fingerprint every regular file and report groups
of files whose content is byte-for-byte identical.`,
		Args: cobra.ExactArgs(1),
		RunE: runHunt,
	}

	cmd.Flags().BoolVar(&huntFlags.SkipHidden, "skip-hidden", false, "skip hidden files and directories")
	cmd.Flags().BoolVar(&huntFlags.UseSQLite, "use-sqlite", false, "cluster fingerprints in a scratch SQLite database instead of memory")
	cmd.Flags().BoolVar(&huntFlags.Delete, "delete", false, "delete duplicates (accepted, currently has no effect)")
	cmd.Flags().IntVarP(&huntFlags.Parallel, "parallel", "p", 0, "number of parallel workers (default: from config)")
	cmd.Flags().StringVarP(&huntFlags.Bandwidth, "bandwidth", "b", "", "read bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().StringVar(&huntFlags.VerifyMemory, "verify-memory", "", "largest file compared in memory during verification (e.g., \"16M\")")
	cmd.Flags().StringVar(&huntFlags.ScratchDir, "scratch-dir", "", "directory for the SQLite scratch database")
	cmd.Flags().StringSliceVar(&huntFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVarP(&huntFlags.Output, "output", "o", "", "output format: human, hash, json")
	cmd.Flags().StringVar(&huntFlags.ReportFile, "report-file", "", "also write the duplicate clusters to this file")

	// Logging flags
	cmd.Flags().StringVar(&huntFlags.LogFile, "log-file", "", "write logs to file instead of stderr")
	cmd.Flags().StringVar(&huntFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&huntFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runHunt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	huntFlags.Root = args[0]

	// Validate flags
	if err := validateHuntFlags(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cfg); err != nil {
		return err
	}

	// Create hunt operation
	operation, err := createHuntOperation(cfg)
	if err != nil {
		return fmt.Errorf("failed to create hunt operation: %w", err)
	}

	// Create storage backend; a malformed root is fatal before traversal
	backend, err := storage.NewLocal(operation.Root)
	if err != nil {
		return fmt.Errorf("failed to open root: %w", err)
	}
	defer backend.Close()
	operation.Root = backend.Root()

	// Create output formatter
	formatter, err := output.New(cfg.Output.Format, os.Stderr, cfg.Output.Quiet)
	if err != nil {
		return err
	}
	if cfg.Output.Progress && output.IsTerminal(os.Stderr) {
		formatter = output.NewProgressFormatter(formatter, os.Stderr)
	}

	// Create logger
	logger, err := createLogger(cfg.Logging.File, cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// Run hunt
	engine := hunt.NewEngine(backend, formatter, logger, operation)
	report, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("hunt failed: %w", err)
	}

	if cfg.Output.ReportFile != "" {
		if err := output.WriteReportFile(report, cfg.Output.ReportFile, cfg.Output.Format); err != nil {
			return fmt.Errorf("failed to write report file: %w", err)
		}
	}

	// Exit with appropriate code
	logger.Close()
	os.Exit(report.Status.ExitCode())
	return nil
}

// createLogger logs to file when a path is given and to stderr otherwise
func createLogger(logFile, logFormat, logLevel string) (logging.Logger, error) {
	format := logging.ParseFormat(logFormat)
	level := logging.ParseLevel(logLevel)

	if logFile == "" {
		return logging.NewWriterLogger(os.Stderr, format, level), nil
	}

	config := logging.FileLoggerConfig{
		Path:       logFile,
		Format:     format,
		Level:      level,
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	}

	return logging.NewFileLogger(config)
}
