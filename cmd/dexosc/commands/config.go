package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	dexerrors "github.com/dexcom-osc-bridge/dexosc-go/internal/errors"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration after defaults, the settings file,
DEXOSC_* environment variables and flags have been applied.

Environment variables use the key path, e.g. DEXOSC_RUN_MIN_DELTA=5.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd); err != nil {
				return err
			}
			data, err := a.cfg.YAML()
			if err != nil {
				return dexerrors.WrapWithCode(err, dexerrors.ErrConfig, "Failed to render configuration", "")
			}
			if a.cfg.Source != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# from %s\n", a.cfg.Source)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.AddCommand(show)
	return cmd
}
