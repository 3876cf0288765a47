package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logiclink/logiclink/internal/cli/output"
	"github.com/logiclink/logiclink/pkg/config"
	"github.com/logiclink/logiclink/pkg/params"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a logiclink configuration file.

Checks for syntax errors, invalid values and acquisition settings the
storage layout cannot hold, then prints the derived layout.

Examples:
  logiclink config validate
  logiclink config validate --config /etc/logiclink/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	layout, err := cfg.BlockArrayConfig()
	if err != nil {
		return err
	}

	var warnings []string
	if cfg.Acquisition.Mode == params.ModeDiscard && cfg.Demo.Interval == 0 {
		warnings = append(warnings, "discard mode with an unpaced demo source drops most blocks")
	}
	if !cfg.Metrics.Enabled {
		warnings = append(warnings, "metrics disabled: the status server will not run")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", path)
	_, _ = fmt.Fprintln(out, "Validation: OK")
	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintln(out, "\nStorage layout:")
	return output.SimpleTable(out, [][2]string{
		{"Channels", fmt.Sprintf("%d", layout.ChannelsNumber)},
		{"Sample rate", output.Samples(layout.SampleRate) + "Hz"},
		{"Append size", output.Bytes(uint64(layout.BlockSizeB))},
		{"Commit size", output.Bytes(uint64(layout.CommitBytes()))},
		{"Levels", fmt.Sprintf("%d x%d", layout.Levels, layout.ZoomOutPerLevel)},
		{"Codec", cfg.Acquisition.Codec},
	})
}
