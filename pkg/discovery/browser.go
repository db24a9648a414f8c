package discovery

import (
	"context"

	"github.com/enbility/zeroconf/v3/api"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// Browse streams service entries of serviceType until ctx is done.
	// An instance may be reported more than once as its records change.
	// The channel is closed when browsing stops.
	Browse(ctx context.Context, serviceType string) (<-chan *ServiceEntry, error)
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// ConnectionFactory creates multicast connections.
	// If nil, uses the default zeroconf connection factory.
	ConnectionFactory api.ConnectionFactory

	// InterfaceProvider lists network interfaces.
	// If nil, uses the default zeroconf interface provider.
	InterfaceProvider api.InterfaceProvider
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Interface: "",
	}
}
