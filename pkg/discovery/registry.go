package discovery

import (
	"net"
	"sync"
)

// registry collects browse results by instance name. Entries arrive from the
// browse goroutine while the resolver may read, so all access is locked.
type registry struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*ServiceEntry
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*ServiceEntry)}
}

// add records a new instance or merges an update into a known one.
func (r *registry) add(e *ServiceEntry) {
	if e == nil || e.Instance == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, found := r.entries[e.Instance]
	if !found {
		cp := *e
		r.entries[e.Instance] = &cp
		r.order = append(r.order, e.Instance)
		return
	}

	if e.Host != "" {
		existing.Host = e.Host
	}
	if e.Port != 0 {
		existing.Port = e.Port
	}
	if len(e.Text) > 0 {
		existing.Text = e.Text
	}
	existing.AddrIPv4 = mergeAddresses(existing.AddrIPv4, e.AddrIPv4)
	existing.AddrIPv6 = mergeAddresses(existing.AddrIPv6, e.AddrIPv6)
}

// names returns the distinct instance names in first-seen order.
func (r *registry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// lookup returns a copy of the entry for instance.
func (r *registry) lookup(instance string) (ServiceEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[instance]
	if !ok {
		return ServiceEntry{}, false
	}
	return *e, true
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []net.IP) []net.IP {
	seen := make(map[string]bool, len(existing))
	for _, ip := range existing {
		seen[ip.String()] = true
	}

	for _, ip := range added {
		if !seen[ip.String()] {
			existing = append(existing, ip)
			seen[ip.String()] = true
		}
	}
	return existing
}

// firstIPv4 returns the first IPv4 address of e.
func firstIPv4(e ServiceEntry) (string, error) {
	for _, ip := range e.AddrIPv4 {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", ErrNoIPv4
}
