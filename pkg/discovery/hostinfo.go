package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// maxHostInfoSize caps the HOST_INFO body read from a device.
const maxHostInfoSize = 64 << 10

// hostInfoPaths are tried in order; some servers only answer one form.
var hostInfoPaths = []string{"?HOST_INFO", "/?HOST_INFO"}

// HostInfoProber fetches OSCQuery host metadata.
type HostInfoProber interface {
	// ProbeHostInfo returns the metadata of the OSCQuery server at ip:port,
	// or ok=false when none could be obtained.
	ProbeHostInfo(ctx context.Context, ip string, port int) (info *HostInfo, ok bool)
}

// HTTPProber queries HOST_INFO over plain HTTP.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober whose requests time out after ProbeTimeout.
// A nil client uses a dedicated http.Client.
func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = &http.Client{Timeout: ProbeTimeout}
	}
	return &HTTPProber{client: client}
}

// ProbeHostInfo implements HostInfoProber. Network, status and decoding
// failures all mean "no metadata".
func (p *HTTPProber) ProbeHostInfo(ctx context.Context, ip string, port int) (*HostInfo, bool) {
	base := "http://" + net.JoinHostPort(ip, strconv.Itoa(port))
	for _, suffix := range hostInfoPaths {
		info, err := p.fetch(ctx, base+suffix)
		if err == nil {
			return info, true
		}
	}
	return nil, false
}

func (p *HTTPProber) fetch(ctx context.Context, url string) (*HostInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HOST_INFO status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxHostInfoSize))
	if err != nil {
		return nil, err
	}
	return ParseHostInfo(data)
}

type hostInfoDoc struct {
	Name    string          `json:"NAME"`
	OSCIP   string          `json:"OSC_IP"`
	OSCPort json.RawMessage `json:"OSC_PORT"`
}

// ParseHostInfo decodes a HOST_INFO document. OSC_PORT may be a number or a
// numeric string; anything else falls back to DefaultOSCPort.
func ParseHostInfo(data []byte) (*HostInfo, error) {
	var doc hostInfoDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &HostInfo{
		Name:    strings.TrimSpace(doc.Name),
		OSCIP:   strings.TrimSpace(doc.OSCIP),
		OSCPort: parseOSCPort(doc.OSCPort),
	}, nil
}

func parseOSCPort(raw json.RawMessage) int {
	if len(raw) == 0 {
		return DefaultOSCPort
	}

	var port int
	var num float64
	var str string
	switch {
	case json.Unmarshal(raw, &num) == nil:
		port = int(num)
	case json.Unmarshal(raw, &str) == nil:
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return DefaultOSCPort
		}
		port = n
	default:
		return DefaultOSCPort
	}

	if port <= 0 || port > 65535 {
		return DefaultOSCPort
	}
	return port
}

// Ensure HTTPProber implements HostInfoProber interface.
var _ HostInfoProber = (*HTTPProber)(nil)
