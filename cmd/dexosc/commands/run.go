package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	dexerrors "github.com/dexcom-osc-bridge/dexosc-go/internal/errors"
	"github.com/dexcom-osc-bridge/dexosc-go/internal/prompt"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/bridge"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/config"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/discovery"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/history"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/metrics"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/share"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/vault"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bridge",
		Long: `Unlock the stored credentials, find the headset and forward glucose
readings to the VRChat chatbox until interrupted.

--quest-ip accepts an address or "auto" to discover the headset over
mDNS/OSCQuery.

Examples:
  dexosc run
  dexosc run --quest-ip 192.168.1.20 --interval 60s --min-delta 3
  dexosc run --metrics-addr :9109 --history-file ~/bridge.dlog`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd,
				binding{config.KeyQuestIP, "quest-ip"},
				binding{config.KeyQuestPort, "quest-port"},
				binding{config.KeyInterval, "interval"},
				binding{config.KeyMinDelta, "min-delta"},
				binding{config.KeyDiscoveryTimeout, "discovery-timeout"},
				binding{config.KeyMetricsAddr, "metrics-addr"},
				binding{config.KeyHistoryFile, "history-file"},
			); err != nil {
				return err
			}
			return a.runBridge(cmd.Context(), cmd)
		},
	}

	f := cmd.Flags()
	f.String("quest-ip", discovery.AddressAuto, `headset address, or "auto" to discover it`)
	f.Int("quest-port", discovery.DefaultOSCPort, "headset OSC port")
	f.Duration("interval", bridge.DefaultInterval, "wait between polls")
	f.Int("min-delta", bridge.DefaultMinDelta, "smallest change in mg/dL that is sent (0 sends every reading)")
	f.Duration("discovery-timeout", discovery.DefaultBrowseWindow, "mDNS browse window")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9109")
	f.String("history-file", "", "append cycle history to this file")
	return cmd
}

func (a *app) runBridge(ctx context.Context, cmd *cobra.Command) error {
	cfg := a.cfg

	rec, err := vault.Load(cfg.CredentialFile)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return dexerrors.WrapWithCode(err, dexerrors.ErrVault,
				"Credential file not found: "+cfg.CredentialFile,
				"Run 'dexosc setup' first")
		}
		return dexerrors.WrapWithCode(err, dexerrors.ErrVault,
			"Cannot read credential file", "Re-run 'dexosc setup' to recreate it")
	}

	password, err := a.unlock(cmd, rec)
	if err != nil {
		return err
	}

	source, err := a.deps.Provider(ctx, share.Config{
		Region:   rec.Region.String(),
		Username: rec.Username,
		Password: password,
		Logger:   a.logger,
	})
	if err != nil {
		return dexerrors.WrapWithCode(err, dexerrors.ErrProvider,
			"Dexcom Share rejected the login",
			"Check the region and that Share is enabled in the Dexcom app")
	}

	ep, err := a.deps.Resolver(a.logger).Resolve(ctx, cfg.Run.QuestIP, cfg.Run.QuestPort, cfg.Run.DiscoveryTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return dexerrors.WrapWithCode(err, dexerrors.ErrDiscovery,
			"Could not find the headset on the local network",
			"Make sure VRChat is running with OSC enabled, or pass --quest-ip <address>")
	}

	hist, closeHist, err := a.historyLogger(cfg.Run.HistoryFile)
	if err != nil {
		return dexerrors.WrapWithCode(err, dexerrors.ErrConfig,
			"Cannot open history file "+cfg.Run.HistoryFile, "")
	}
	defer closeHist()

	loop, err := bridge.NewLoop(bridge.Config{
		Source:   source,
		Sender:   a.deps.Sender(ep),
		Endpoint: ep.String(),
		Interval: cfg.Run.Interval,
		MinDelta: cfg.Run.MinDelta,
		History:  hist,
		Logger:   a.logger,
	})
	if err != nil {
		return dexerrors.WrapWithCode(err, dexerrors.ErrConfig, "Invalid bridge settings", "")
	}

	if cfg.Run.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Run.MetricsAddr); err != nil {
				a.logger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Running Dexcom(Share)->OSC: Quest %s interval=%s min_delta=%d\n",
		ep, cfg.Run.Interval, cfg.Run.MinDelta)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// unlock prompts for the master passphrase and decrypts the password.
func (a *app) unlock(cmd *cobra.Command, rec *vault.CredentialRecord) (string, error) {
	p, err := a.deps.Prompter(a.deps.In, cmd.OutOrStdout())
	if err != nil {
		return "", dexerrors.WrapWithCode(err, dexerrors.ErrVault, "Cannot read from the terminal", "")
	}
	defer p.Close()

	master, err := p.Secret("Master passphrase (hidden): ")
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			return "", dexerrors.New(dexerrors.ErrVault, "Cancelled", "")
		}
		return "", dexerrors.WrapWithCode(err, dexerrors.ErrVault, "Failed to read passphrase", "")
	}

	password, err := vault.Decrypt(rec.EncryptedPassword, master)
	if err != nil {
		return "", dexerrors.WrapWithCode(err, dexerrors.ErrVault,
			"Could not unlock credentials",
			"Check the master passphrase, or run 'dexosc setup' to start over")
	}
	return password, nil
}

func (a *app) historyLogger(path string) (history.Logger, func(), error) {
	console := history.NewSlogAdapter(a.logger)
	if path == "" {
		return console, func() {}, nil
	}
	fl, err := history.NewFileLogger(path)
	if err != nil {
		return nil, nil, err
	}
	fl.SetLogger(a.logger)
	return history.NewMultiLogger(console, fl), func() { _ = fl.Close() }, nil
}
