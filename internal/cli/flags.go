package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/doppelganger/pkg/config"
)

// GlobalFlags are shared by every subcommand
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool // info-level logging and progress bars
	Quiet      bool // no progress, no summary, errors only
}

var globalFlags GlobalFlags

// AddGlobalFlags registers the persistent flags on the root command
func AddGlobalFlags(cmd *cobra.Command) {
	configHelp := "config file"
	if path, err := config.DefaultConfigPath(); err == nil {
		configHelp += " (default " + path + ")"
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&globalFlags.ConfigFile, "config", "", configHelp)
	flags.BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "log progress details")
	flags.BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "print clusters only")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}
