package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeOSCQuery is the DNS-SD type announced by OSCQuery servers.
	ServiceTypeOSCQuery = "_oscjson._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultOSCPort is assumed when HOST_INFO does not declare OSC_PORT.
	DefaultOSCPort = 9000
)

// Sentinel values for the requested address that trigger discovery.
const (
	AddressAuto     = "auto"
	AddressOSCQuery = "oscquery"
)

// Timing constants.
const (
	// MinBrowseWindow is the shortest browse, long enough for one
	// query/answer round trip.
	MinBrowseWindow = 500 * time.Millisecond

	// DefaultBrowseWindow is used when the caller does not choose one.
	DefaultBrowseWindow = 3 * time.Second

	// ProbeTimeout bounds each HOST_INFO request.
	ProbeTimeout = 1500 * time.Millisecond
)

// Scoring weights.
const (
	TargetSubstring = "vrchat"

	ScoreInstanceMatch = 100
	ScoreHostMatch     = 80
	ScoreRoutable      = 40
)

// Discovery errors.
var (
	ErrNoCandidates = errors.New("no OSCQuery service found on the local network")
	ErrNoIPv4       = errors.New("service has no IPv4 address")
)

// Endpoint is the resolved OSC destination.
type Endpoint struct {
	IP   string
	Port int
}

// String returns host:port.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.IP, strconv.Itoa(e.Port))
}

// ServiceEntry is a browse result, independent of the mDNS library.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     int
	Text     []string
	AddrIPv4 []net.IP
	AddrIPv6 []net.IP
}

// HostInfo is the subset of an OSCQuery HOST_INFO document used here.
type HostInfo struct {
	Name    string
	OSCIP   string
	OSCPort int
}

// Candidate is one scored discovery result.
type Candidate struct {
	// InstanceName is the advertised mDNS instance.
	InstanceName string

	// ServiceIP is the IPv4 address the instance resolved to.
	ServiceIP string

	// ServicePort is the OSCQuery HTTP port.
	ServicePort int

	// DeclaredName, DeclaredIP and DeclaredPort come from HOST_INFO.
	DeclaredName string
	DeclaredIP   string
	DeclaredPort int

	// IP is the address chosen for OSC traffic.
	IP string

	Score int
}
