package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dexcom-osc-bridge/dexosc-go/pkg/metrics"
)

// ResolverConfig configures a Resolver. Nil fields get production defaults.
type ResolverConfig struct {
	Browser Browser
	Prober  HostInfoProber
	Logger  *slog.Logger
}

// Resolver turns a requested address into an OSC Endpoint.
// It keeps no state between calls.
type Resolver struct {
	browser Browser
	prober  HostInfoProber
	logger  *slog.Logger
}

// NewResolver creates a resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	browser := cfg.Browser
	if browser == nil {
		browser = NewMDNSBrowser(DefaultBrowserConfig(), logger)
	}
	prober := cfg.Prober
	if prober == nil {
		prober = NewHTTPProber(nil)
	}
	return &Resolver{
		browser: browser,
		prober:  prober,
		logger:  logger,
	}
}

// IsAutoAddress reports whether requested asks for discovery.
func IsAutoAddress(requested string) bool {
	r := strings.TrimSpace(requested)
	return strings.EqualFold(r, AddressAuto) || strings.EqualFold(r, AddressOSCQuery)
}

// Resolve returns the OSC endpoint for requested. A concrete address is
// returned as is without touching the network; "auto" and "oscquery" run
// discovery and use the best candidate's address. The returned port is
// always requestedPort.
func (r *Resolver) Resolve(ctx context.Context, requested string, requestedPort int, timeout time.Duration) (Endpoint, error) {
	if !IsAutoAddress(requested) {
		return Endpoint{IP: strings.TrimSpace(requested), Port: requestedPort}, nil
	}

	candidates, err := r.Discover(ctx, timeout)
	if err != nil {
		return Endpoint{}, err
	}

	best := candidates[0]
	if best.DeclaredPort != requestedPort {
		r.logger.Debug("discovered OSC port differs from requested port, using requested",
			"declared", best.DeclaredPort, "requested", requestedPort)
	}
	r.logger.Info("discovered OSC endpoint",
		"instance", best.InstanceName, "ip", best.IP, "score", best.Score)

	return Endpoint{IP: best.IP, Port: requestedPort}, nil
}

// Discover browses for OSCQuery services for at least timeout (never less
// than MinBrowseWindow) and returns the scored candidates, best first.
func (r *Resolver) Discover(ctx context.Context, timeout time.Duration) ([]Candidate, error) {
	window := max(timeout, MinBrowseWindow)

	browseCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	entries, err := r.browser.Browse(browseCtx, ServiceTypeOSCQuery)
	if err != nil {
		return nil, fmt.Errorf("browse %s: %w", ServiceTypeOSCQuery, err)
	}

	reg := newRegistry()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			reg.add(e)
		}
	}()

	<-browseCtx.Done()
	<-done

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, name := range reg.names() {
		entry, _ := reg.lookup(name)

		ip, err := firstIPv4(entry)
		if err != nil {
			r.logger.Debug("skipping OSCQuery service", "instance", name, "error", err)
			continue
		}

		info, ok := r.prober.ProbeHostInfo(ctx, ip, entry.Port)
		if !ok {
			r.logger.Debug("no HOST_INFO", "instance", name, "ip", ip, "port", entry.Port)
			info = nil
		}

		candidates = append(candidates, NewCandidate(entry, ip, info))
	}

	metrics.RecordDiscovery(len(candidates))
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	ranked := RankCandidates(candidates)
	for _, c := range ranked {
		r.logger.Debug("OSCQuery candidate",
			"instance", c.InstanceName, "host", c.DeclaredName, "ip", c.IP, "score", c.Score)
	}
	return ranked, nil
}
