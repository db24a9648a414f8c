// Package commands implements the dexosc CLI.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dexcom-osc-bridge/dexosc-go/internal/prompt"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/bridge"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/config"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/discovery"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/osc"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/share"
)

// EndpointResolver finds the OSC endpoint.
type EndpointResolver interface {
	Resolve(ctx context.Context, requested string, port int, timeout time.Duration) (discovery.Endpoint, error)
	Discover(ctx context.Context, timeout time.Duration) ([]discovery.Candidate, error)
}

// Deps are the collaborators commands construct at startup. Tests replace
// them with fakes.
type Deps struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Prompter func(in io.Reader, out io.Writer) (prompt.Prompter, error)
	Provider func(ctx context.Context, cfg share.Config) (bridge.Source, error)
	Resolver func(logger *slog.Logger) EndpointResolver
	Sender   func(ep discovery.Endpoint) bridge.Sender
}

// DefaultDeps wires the real terminal, Share client, mDNS resolver and OSC
// sender.
func DefaultDeps() Deps {
	return Deps{
		In:       os.Stdin,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Prompter: prompt.New,
		Provider: func(ctx context.Context, cfg share.Config) (bridge.Source, error) {
			c, err := share.New(cfg)
			if err != nil {
				return nil, err
			}
			if err := c.Login(ctx); err != nil {
				return nil, err
			}
			return c, nil
		},
		Resolver: func(logger *slog.Logger) EndpointResolver {
			return discovery.NewResolver(discovery.ResolverConfig{Logger: logger})
		},
		Sender: func(ep discovery.Endpoint) bridge.Sender {
			return osc.NewSender(ep)
		},
	}
}

type app struct {
	deps       Deps
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

type binding struct {
	key  string
	flag string
}

// NewRootCmd builds the command tree.
func NewRootCmd(deps Deps) *cobra.Command {
	a := &app{deps: deps, v: config.New()}

	root := &cobra.Command{
		Use:   "dexosc",
		Short: "Dexcom Share to VRChat chatbox bridge over OSC",
		Long: `dexosc polls a Dexcom Share account and shows the latest glucose value
and trend arrow in the VRChat chatbox over OSC.

Run 'dexosc setup' once to store encrypted credentials, then 'dexosc run'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(deps.In)
	root.SetOut(deps.Out)
	root.SetErr(deps.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "settings file (default ~/.config/dexcom-osc-bridge/config.yaml)")
	pf.String("cred-file", "", "encrypted credential file (default ~/.config/dexcom-osc-bridge/dexcom_credentials.json)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	_ = a.v.BindPFlag(config.KeyCredentialFile, pf.Lookup("cred-file"))
	_ = a.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))

	root.AddCommand(
		newSetupCmd(a),
		newRunCmd(a),
		newDiscoverCmd(a),
		newHistoryCmd(),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// init binds command flags, resolves configuration and builds the logger.
func (a *app) init(cmd *cobra.Command, binds ...binding) error {
	for _, b := range binds {
		if err := a.v.BindPFlag(b.key, cmd.Flags().Lookup(b.flag)); err != nil {
			return err
		}
	}

	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := config.ParseLevel(cfg.LogLevel)
	a.logger = slog.New(slog.NewTextHandler(a.deps.Err, &slog.HandlerOptions{Level: level}))
	return nil
}
