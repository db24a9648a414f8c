package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCandidate(t *testing.T) {
	entry := ServiceEntry{Instance: "VRChat-Client-1", Port: 35123}

	t.Run("DeclaredIPWins", func(t *testing.T) {
		c := NewCandidate(entry, "192.168.1.20", &HostInfo{Name: "Quest", OSCIP: "192.168.1.21", OSCPort: 9001})
		assert.Equal(t, "192.168.1.21", c.IP)
		assert.Equal(t, 9001, c.DeclaredPort)
		assert.Equal(t, 35123, c.ServicePort)
	})

	t.Run("NoMetadataUsesServiceIP", func(t *testing.T) {
		c := NewCandidate(entry, "192.168.1.20", nil)
		assert.Equal(t, "192.168.1.20", c.IP)
		assert.Equal(t, DefaultOSCPort, c.DeclaredPort)
		assert.Empty(t, c.DeclaredName)
	})

	t.Run("EmptyDeclaredIPUsesServiceIP", func(t *testing.T) {
		c := NewCandidate(entry, "192.168.1.20", &HostInfo{Name: "Quest"})
		assert.Equal(t, "192.168.1.20", c.IP)
	})

	t.Run("LoopbackDeclaredIPSubstituted", func(t *testing.T) {
		c := NewCandidate(entry, "192.168.1.20", &HostInfo{OSCIP: "127.0.0.1", OSCPort: 9000})
		assert.Equal(t, "192.168.1.20", c.IP)
	})

	t.Run("LoopbackKeptWhenServiceIsLoopback", func(t *testing.T) {
		c := NewCandidate(entry, "127.0.0.1", &HostInfo{OSCIP: "127.0.0.1"})
		assert.Equal(t, "127.0.0.1", c.IP)
	})
}

func TestScoreCandidate(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want int
	}{
		{
			name: "InstanceMatchRoutable",
			c:    Candidate{InstanceName: "VRChat-Client-1", DeclaredName: "Quest-HMD", IP: "192.168.1.20"},
			want: 140,
		},
		{
			name: "NoMatchLoopback",
			c:    Candidate{InstanceName: "TouchOSC", DeclaredName: "Desktop", IP: "127.0.0.1"},
			want: 0,
		},
		{
			name: "AllSignals",
			c:    Candidate{InstanceName: "vrchat-client", DeclaredName: "VRChat", IP: "10.0.0.5"},
			want: 220,
		},
		{
			name: "HostMatchOnly",
			c:    Candidate{InstanceName: "OSCQuery", DeclaredName: "VRCHAT-Quest", IP: "::1"},
			want: 80,
		},
		{
			name: "LocalhostName",
			c:    Candidate{InstanceName: "x", IP: "localhost"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreCandidate(tt.c))
		})
	}
}

func TestRankCandidates(t *testing.T) {
	t.Run("HighestFirst", func(t *testing.T) {
		ranked := RankCandidates([]Candidate{
			{InstanceName: "Other", IP: "127.0.0.1"},
			{InstanceName: "VRChat-Client-1", DeclaredName: "Quest-HMD", IP: "192.168.1.20"},
		})
		assert.Equal(t, "VRChat-Client-1", ranked[0].InstanceName)
		assert.Equal(t, 140, ranked[0].Score)
		assert.Equal(t, 0, ranked[1].Score)
	})

	t.Run("TiesKeepFirstSeen", func(t *testing.T) {
		ranked := RankCandidates([]Candidate{
			{InstanceName: "first", IP: "192.168.1.2"},
			{InstanceName: "second", IP: "192.168.1.3"},
			{InstanceName: "third", IP: "192.168.1.4"},
		})
		assert.Equal(t, []string{"first", "second", "third"},
			[]string{ranked[0].InstanceName, ranked[1].InstanceName, ranked[2].InstanceName})
	})
}
