package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sdejongh/doppelganger/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the doppelganger configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, configRows(cfg), false))
			return nil
		},
	}
}

// configRows flattens cfg into setting/value pairs for display
func configRows(cfg *config.Config) [][]string {
	bandwidth := "unlimited"
	if cfg.Performance.BandwidthLimit > 0 {
		bandwidth = humanize.IBytes(uint64(cfg.Performance.BandwidthLimit)) + "/s"
	}
	scratch := cfg.Index.ScratchDir
	if scratch == "" {
		scratch = "(system temp)"
	}
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = "(stderr)"
	}
	exclude := strings.Join(cfg.Exclude, ", ")
	if exclude == "" {
		exclude = "(none)"
	}

	return [][]string{
		{"hunt.skip_hidden", strconv.FormatBool(cfg.Hunt.SkipHidden)},
		{"hunt.index", string(cfg.Hunt.Index)},
		{"hunt.delete_duplicates", strconv.FormatBool(cfg.Hunt.DeleteDuplicates)},
		{"performance.max_workers", strconv.Itoa(cfg.Performance.MaxWorkers)},
		{"performance.buffer_size", humanize.IBytes(uint64(cfg.Performance.BufferSize))},
		{"performance.verify_memory_limit", humanize.IBytes(uint64(cfg.Performance.VerifyMemoryLimit))},
		{"performance.bandwidth_limit", bandwidth},
		{"index.scratch_dir", scratch},
		{"output.format", cfg.Output.Format},
		{"output.progress", strconv.FormatBool(cfg.Output.Progress)},
		{"output.quiet", strconv.FormatBool(cfg.Output.Quiet)},
		{"logging.format", cfg.Logging.Format},
		{"logging.level", cfg.Logging.Level},
		{"logging.file", logFile},
		{"exclude", exclude},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			if !force {
				if _, err := config.LoadFromFile(path); err == nil {
					return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
				}
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")

	return cmd
}
