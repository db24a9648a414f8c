package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	dexerrors "github.com/dexcom-osc-bridge/dexosc-go/internal/errors"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/config"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/discovery"
)

func newDiscoverCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List OSCQuery services on the local network",
		Long: `Browse for OSCQuery services and print every candidate with its score.
The first row is the endpoint 'dexosc run --quest-ip auto' would pick.

Examples:
  dexosc discover
  dexosc discover --timeout 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd, binding{config.KeyDiscoveryTimeout, "timeout"}); err != nil {
				return err
			}
			return a.runDiscover(cmd)
		},
	}
	cmd.Flags().Duration("timeout", discovery.DefaultBrowseWindow, "mDNS browse window")
	return cmd
}

func (a *app) runDiscover(cmd *cobra.Command) error {
	candidates, err := a.deps.Resolver(a.logger).Discover(cmd.Context(), a.cfg.Run.DiscoveryTimeout)
	if err != nil {
		if errors.Is(err, discovery.ErrNoCandidates) {
			return dexerrors.WrapWithCode(err, dexerrors.ErrDiscovery,
				"No OSCQuery services found",
				"Make sure VRChat is running with OSC enabled and on the same network")
		}
		return dexerrors.WrapWithCode(err, dexerrors.ErrDiscovery, "Discovery failed", "")
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tINSTANCE\tHOST\tIP\tOSC PORT")
	for _, c := range candidates {
		port := "-"
		if c.DeclaredPort != 0 {
			port = fmt.Sprint(c.DeclaredPort)
		}
		host := c.DeclaredName
		if host == "" {
			host = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.Score, c.InstanceName, host, c.IP, port)
	}
	return tw.Flush()
}
