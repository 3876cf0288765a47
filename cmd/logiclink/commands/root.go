// Package commands implements the logiclink command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/logiclink/logiclink/cmd/logiclink/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "logiclink",
	Short: "logiclink - logic analyzer capture engine",
	Long: `logiclink captures multi-channel sample streams, rearranges them
into per-channel bit streams and keeps a multi-level zoom pyramid for
fast display.

Use "logiclink [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/logiclink/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(config.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the --config flag.
func GetConfigFile() string {
	return cfgFile
}
