package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	dexerrors "github.com/dexcom-osc-bridge/dexosc-go/internal/errors"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/bridge"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/discovery"
)

// New returns a viper instance with defaults and environment overrides.
// Commands bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyCredentialFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyQuestIP, discovery.AddressAuto)
	v.SetDefault(KeyQuestPort, discovery.DefaultOSCPort)
	v.SetDefault(KeyInterval, bridge.DefaultInterval)
	v.SetDefault(KeyMinDelta, bridge.DefaultMinDelta)
	v.SetDefault(KeyDiscoveryTimeout, discovery.DefaultBrowseWindow)
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyHistoryFile, "")
	return v
}

// Load resolves the configuration. explicit is the --config path; when it
// is empty the default settings file is read if it exists.
func Load(v *viper.Viper, explicit string) (*Config, error) {
	path, err := findConfigFile(explicit)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, dexerrors.WrapWithCode(err, dexerrors.ErrConfig,
				"Failed to read config file "+path,
				"Check the file is valid YAML")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, dexerrors.WrapWithCode(err, dexerrors.ErrConfig,
			"Invalid configuration",
			"Check value types, e.g. interval: 30s")
	}
	cfg.Source = path

	if cfg.CredentialFile == "" {
		cfg.CredentialFile, err = DefaultCredentialPath()
		if err != nil {
			return nil, dexerrors.WrapWithCode(err, dexerrors.ErrConfig,
				"Cannot determine home directory",
				"Pass --cred-file explicitly")
		}
	} else {
		cfg.CredentialFile = expandHome(cfg.CredentialFile)
	}
	cfg.Run.HistoryFile = expandHome(cfg.Run.HistoryFile)

	if err := cfg.Validate(); err != nil {
		return nil, dexerrors.WrapWithCode(err, dexerrors.ErrConfig,
			"Invalid configuration", "")
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Run.QuestPort < 1 || c.Run.QuestPort > 65535 {
		return fmt.Errorf("quest port %d out of range 1-65535", c.Run.QuestPort)
	}
	if c.Run.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if c.Run.MinDelta < 0 {
		return bridge.ErrNegativeDelta
	}
	if c.Run.DiscoveryTimeout <= 0 {
		return errors.New("discovery timeout must be positive")
	}
	if strings.TrimSpace(c.Run.QuestIP) == "" {
		return errors.New("quest ip must be an address or \"auto\"")
	}
	return nil
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s)
	}
	return level, nil
}

// Dir returns ~/.config/dexcom-osc-bridge.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDir), nil
}

// DefaultCredentialPath returns the default credential file location.
func DefaultCredentialPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CredentialFileName), nil
}

func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		explicit = expandHome(explicit)
		if _, err := os.Stat(explicit); err != nil {
			return "", dexerrors.WrapWithCode(err, dexerrors.ErrConfig,
				"Specified config file not found: "+explicit,
				"Check the path is correct")
		}
		return explicit, nil
	}

	dir, err := Dir()
	if err != nil {
		return "", nil
	}
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
