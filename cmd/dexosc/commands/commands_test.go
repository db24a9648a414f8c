package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dexerrors "github.com/dexcom-osc-bridge/dexosc-go/internal/errors"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/bridge"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/discovery"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/history"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/share"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/vault"
)

const (
	testPassword   = "dexcom-pw-123"
	testPassphrase = "correct horse battery staple"
)

type fakeSource struct{ value int }

func (f fakeSource) CurrentGlucoseReading(context.Context) (any, error) {
	return map[string]any{"value": f.value, "trend": "FortyFiveUp"}, nil
}

type fakeResolver struct {
	endpoint   discovery.Endpoint
	candidates []discovery.Candidate
	err        error

	requested string
	port      int
}

func (f *fakeResolver) Resolve(_ context.Context, requested string, port int, _ time.Duration) (discovery.Endpoint, error) {
	f.requested, f.port = requested, port
	return f.endpoint, f.err
}

func (f *fakeResolver) Discover(context.Context, time.Duration) ([]discovery.Candidate, error) {
	return f.candidates, f.err
}

type senderFunc func(ctx context.Context, msg string) error

func (f senderFunc) Send(ctx context.Context, msg string) error { return f(ctx, msg) }

type harness struct {
	deps     Deps
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	resolver *fakeResolver
	shareCfg share.Config
	credFile string
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	h := &harness{
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
		resolver: &fakeResolver{endpoint: discovery.Endpoint{IP: "192.168.1.20", Port: 9000}},
		credFile: filepath.Join(home, "creds.json"),
	}
	h.deps = DefaultDeps()
	h.deps.In = strings.NewReader(stdin)
	h.deps.Out = h.out
	h.deps.Err = h.errOut
	h.deps.Provider = func(_ context.Context, cfg share.Config) (bridge.Source, error) {
		h.shareCfg = cfg
		return fakeSource{value: 118}, nil
	}
	h.deps.Resolver = func(*slog.Logger) EndpointResolver { return h.resolver }
	return h
}

func (h *harness) exec(ctx context.Context, args ...string) error {
	root := NewRootCmd(h.deps)
	root.SetArgs(append([]string{"--cred-file", h.credFile}, args...))
	return root.ExecuteContext(ctx)
}

func writeCredentials(t *testing.T, path string) {
	t.Helper()
	blob, err := vault.Encrypt(testPassword, testPassphrase)
	require.NoError(t, err)
	require.NoError(t, vault.Save(path, &vault.CredentialRecord{
		Region:            vault.RegionOUS,
		Username:          "alice@example.com",
		EncryptedPassword: blob,
	}))
}

func TestSetupWritesEncryptedCredentials(t *testing.T) {
	h := newHarness(t, "alice@example.com\n"+testPassword+"\n"+testPassphrase+"\n"+testPassphrase+"\n")

	require.NoError(t, h.exec(context.Background(), "setup", "--region", "Europe"))
	assert.Contains(t, h.out.String(), "Saved encrypted credentials to: "+h.credFile)
	assert.NotContains(t, h.out.String(), testPassword)

	data, err := os.ReadFile(h.credFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), testPassword)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "ous", raw["region"])
	assert.Equal(t, "alice@example.com", raw["username"])

	rec, err := vault.Load(h.credFile)
	require.NoError(t, err)
	pw, err := vault.Decrypt(rec.EncryptedPassword, testPassphrase)
	require.NoError(t, err)
	assert.Equal(t, testPassword, pw)
}

func TestSetupUsernameFlagSkipsPrompt(t *testing.T) {
	h := newHarness(t, testPassword+"\n"+testPassphrase+"\n"+testPassphrase+"\n")

	require.NoError(t, h.exec(context.Background(), "setup", "--username", "bob"))

	rec, err := vault.Load(h.credFile)
	require.NoError(t, err)
	assert.Equal(t, "bob", rec.Username)
	assert.Equal(t, vault.RegionUS, rec.Region)
}

func TestSetupFailures(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{"mismatched passphrases", nil, "u\npw\none\ntwo\n"},
		{"empty password", nil, "u\n\n"},
		{"empty passphrase", nil, "u\npw\n\n\n"},
		{"bad region", []string{"--region", "mars"}, ""},
		{"input ends early", nil, "u\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.stdin)

			err := h.exec(context.Background(), append([]string{"setup"}, tt.args...)...)
			require.Error(t, err)
			assert.True(t, dexerrors.IsCode(err, dexerrors.ErrSetup), "got %v", err)

			_, statErr := os.Stat(h.credFile)
			assert.True(t, os.IsNotExist(statErr), "nothing may be written")
		})
	}
}

func TestRunForwardsReadings(t *testing.T) {
	h := newHarness(t, testPassphrase+"\n")
	writeCredentials(t, h.credFile)
	histFile := filepath.Join(t.TempDir(), "bridge.dlog")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var sent []string
	var sentTo discovery.Endpoint
	h.deps.Sender = func(ep discovery.Endpoint) bridge.Sender {
		sentTo = ep
		return senderFunc(func(_ context.Context, msg string) error {
			mu.Lock()
			defer mu.Unlock()
			sent = append(sent, msg)
			cancel()
			return nil
		})
	}

	err := h.exec(ctx, "run", "--interval", "10ms", "--history-file", histFile)
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []string{"BG 118 ↗"}, sent)
	mu.Unlock()
	assert.Equal(t, discovery.Endpoint{IP: "192.168.1.20", Port: 9000}, sentTo)

	assert.Equal(t, "auto", h.resolver.requested)
	assert.Equal(t, 9000, h.resolver.port)
	assert.Equal(t, "ous", h.shareCfg.Region)
	assert.Equal(t, "alice@example.com", h.shareCfg.Username)
	assert.Equal(t, testPassword, h.shareCfg.Password)

	assert.NotContains(t, h.out.String(), testPassphrase)
	assert.NotContains(t, h.errOut.String(), testPassword)
	assert.NotContains(t, h.errOut.String(), testPassphrase)

	r, err := history.NewReader(histFile)
	require.NoError(t, err)
	defer r.Close()
	stats, err := history.Collect(r)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByAction[history.ActionSent])
	assert.Equal(t, 1, stats.ByAction[history.ActionStarted])
}

func TestRunExplicitAddressAndPort(t *testing.T) {
	h := newHarness(t, testPassphrase+"\n")
	writeCredentials(t, h.credFile)
	h.resolver.endpoint = discovery.Endpoint{IP: "10.0.0.7", Port: 9010}

	ctx, cancel := context.WithCancel(context.Background())
	h.deps.Sender = func(discovery.Endpoint) bridge.Sender {
		return senderFunc(func(context.Context, string) error { cancel(); return nil })
	}

	require.NoError(t, h.exec(ctx, "run", "--quest-ip", "10.0.0.7", "--quest-port", "9010"))
	assert.Equal(t, "10.0.0.7", h.resolver.requested)
	assert.Equal(t, 9010, h.resolver.port)
}

func TestRunStartupFailures(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		h := newHarness(t, testPassphrase+"\n")
		err := h.exec(context.Background(), "run")
		assert.True(t, dexerrors.IsCode(err, dexerrors.ErrVault), "got %v", err)
		assert.ErrorIs(t, err, vault.ErrNotFound)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		h := newHarness(t, "not-my-passphrase\n")
		writeCredentials(t, h.credFile)
		err := h.exec(context.Background(), "run")
		assert.True(t, dexerrors.IsCode(err, dexerrors.ErrVault), "got %v", err)
		assert.ErrorIs(t, err, vault.ErrDecryption)
		assert.NotContains(t, err.Error(), "not-my-passphrase")
	})

	t.Run("provider rejects login", func(t *testing.T) {
		h := newHarness(t, testPassphrase+"\n")
		writeCredentials(t, h.credFile)
		h.deps.Provider = func(context.Context, share.Config) (bridge.Source, error) {
			return nil, &share.APIError{Status: 500, Code: "AccountPasswordInvalid"}
		}
		err := h.exec(context.Background(), "run")
		assert.True(t, dexerrors.IsCode(err, dexerrors.ErrProvider), "got %v", err)
		assert.NotContains(t, err.Error(), testPassword)
	})

	t.Run("no endpoint", func(t *testing.T) {
		h := newHarness(t, testPassphrase+"\n")
		writeCredentials(t, h.credFile)
		h.resolver.err = discovery.ErrNoCandidates
		err := h.exec(context.Background(), "run")
		assert.True(t, dexerrors.IsCode(err, dexerrors.ErrDiscovery), "got %v", err)
	})

	t.Run("negative delta", func(t *testing.T) {
		h := newHarness(t, testPassphrase+"\n")
		writeCredentials(t, h.credFile)
		err := h.exec(context.Background(), "run", "--min-delta", "-1")
		assert.True(t, dexerrors.IsCode(err, dexerrors.ErrConfig), "got %v", err)
	})
}

func TestDiscoverListsCandidates(t *testing.T) {
	h := newHarness(t, "")
	h.resolver.candidates = []discovery.Candidate{
		{InstanceName: "VRChat-Client-1", DeclaredName: "Quest-HMD", IP: "192.168.1.20", DeclaredPort: 9000, Score: 140},
		{InstanceName: "TouchOSC", IP: "127.0.0.1", Score: 0},
	}

	require.NoError(t, h.exec(context.Background(), "discover", "--timeout", "1s"))

	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "SCORE")
	assert.Contains(t, lines[1], "VRChat-Client-1")
	assert.Contains(t, lines[1], "140")
	assert.Contains(t, lines[2], "TouchOSC")
}

func TestDiscoverNoCandidates(t *testing.T) {
	h := newHarness(t, "")
	h.resolver.err = discovery.ErrNoCandidates

	err := h.exec(context.Background(), "discover")
	assert.True(t, dexerrors.IsCode(err, dexerrors.ErrDiscovery))
}

func TestConfigShow(t *testing.T) {
	h := newHarness(t, "")
	t.Setenv("DEXOSC_RUN_MIN_DELTA", "4")

	require.NoError(t, h.exec(context.Background(), "config", "show"))
	out := h.out.String()
	assert.Contains(t, out, "cred_file: "+h.credFile)
	assert.Contains(t, out, "min_delta: 4")
	assert.Contains(t, out, "interval: 30s")
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.exec(context.Background(), "version", "--short"))
	assert.Equal(t, "dev\n", h.out.String())
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, "")
	err := h.exec(context.Background(), "frobnicate")
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
