package discovery

import (
	"context"
	"log/slog"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
	logger *slog.Logger
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig, logger *slog.Logger) *MDNSBrowser {
	if logger == nil {
		logger = slog.Default()
	}
	return &MDNSBrowser{
		config: config,
		logger: logger,
	}
}

// Browse searches for services of the given type. The returned channel is
// closed once zeroconf has shut down after ctx ends.
func (b *MDNSBrowser) Browse(ctx context.Context, serviceType string) (<-chan *ServiceEntry, error) {
	out := make(chan *ServiceEntry)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	browseDone := make(chan struct{})

	opts := b.browserOptions()

	go func() {
		defer close(out)

		// zeroconf blocks on both channels until it returns, so keep
		// draining them after ctx is done.
		found := (<-chan *zeroconf.ServiceEntry)(entries)
		gone := (<-chan *zeroconf.ServiceEntry)(removed)
		for {
			select {
			case entry, ok := <-found:
				if !ok {
					found = nil
					continue
				}
				svc := entryToService(entry)
				if svc == nil {
					continue
				}
				select {
				case out <- svc:
				case <-ctx.Done():
				}

			case _, ok := <-gone:
				// Goodbye packets do not matter within a single window.
				if !ok {
					gone = nil
				}

			case <-browseDone:
				return
			}
		}
	}()

	go func() {
		defer close(browseDone)
		if err := zeroconf.Browse(ctx, serviceType, Domain, entries, removed, opts...); err != nil {
			b.logger.Debug("mdns browse stopped", "service", serviceType, "error", err)
		}
	}()

	return out, nil
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		} else {
			b.logger.Warn("unknown network interface, browsing on all", "interface", b.config.Interface)
		}
	}

	if b.config.ConnectionFactory != nil {
		opts = append(opts, zeroconf.WithClientConnFactory(b.config.ConnectionFactory))
	}
	if b.config.InterfaceProvider != nil {
		opts = append(opts, zeroconf.WithClientInterfaceProvider(b.config.InterfaceProvider))
	}

	return opts
}

// entryToService converts a zeroconf entry to a ServiceEntry.
func entryToService(entry *zeroconf.ServiceEntry) *ServiceEntry {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	return &ServiceEntry{
		Instance: entry.Instance,
		Host:     entry.HostName,
		Port:     entry.Port,
		Text:     entry.Text,
		AddrIPv4: entry.AddrIPv4,
		AddrIPv6: entry.AddrIPv6,
	}
}

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
