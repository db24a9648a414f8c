package discovery

import (
	"net"
	"sort"
	"strings"
)

// NewCandidate builds an unscored candidate from a browse entry, the IPv4
// address it resolved to, and optional HOST_INFO metadata.
func NewCandidate(entry ServiceEntry, serviceIP string, info *HostInfo) Candidate {
	c := Candidate{
		InstanceName: entry.Instance,
		ServiceIP:    serviceIP,
		ServicePort:  entry.Port,
		DeclaredPort: DefaultOSCPort,
	}

	if info != nil {
		c.DeclaredName = info.Name
		c.DeclaredIP = info.OSCIP
		if info.OSCPort > 0 {
			c.DeclaredPort = info.OSCPort
		}
	}

	c.IP = c.DeclaredIP
	if c.IP == "" {
		c.IP = serviceIP
	}
	// A loopback OSC_IP is only meaningful on the headset itself.
	if IsLoopback(c.IP) && !IsLoopback(serviceIP) {
		c.IP = serviceIP
	}

	return c
}

// ScoreCandidate returns the additive ranking score of c.
func ScoreCandidate(c Candidate) int {
	score := 0
	if containsTarget(c.InstanceName) {
		score += ScoreInstanceMatch
	}
	if containsTarget(c.DeclaredName) {
		score += ScoreHostMatch
	}
	if !IsLoopback(c.IP) {
		score += ScoreRoutable
	}
	return score
}

// RankCandidates scores cs and orders them best first. Equal scores keep
// their input order.
func RankCandidates(cs []Candidate) []Candidate {
	ranked := make([]Candidate, len(cs))
	for i, c := range cs {
		c.Score = ScoreCandidate(c)
		ranked[i] = c
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// IsLoopback reports whether ip is a loopback address or "localhost".
func IsLoopback(ip string) bool {
	if strings.EqualFold(ip, "localhost") {
		return true
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}

func containsTarget(s string) bool {
	return strings.Contains(strings.ToLower(s), TargetSubstring)
}
