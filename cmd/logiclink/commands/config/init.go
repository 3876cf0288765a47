package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logiclink/logiclink/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the defaults",
	Long: `Write a logiclink configuration file holding the default settings.

By default the file is created at $XDG_CONFIG_HOME/logiclink/config.yaml.
Use --config to choose another path.

Examples:
  logiclink config init
  logiclink config init --config ./logiclink.yaml --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)

	var err error
	if path != "" {
		err = config.InitConfigToPath(path, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Set the acquisition section to match your device")
	_, _ = fmt.Fprintf(out, "  2. Start a capture with: logiclink run --config %s\n", path)
	return nil
}
