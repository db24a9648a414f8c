// Package config resolves dexosc settings from defaults, an optional YAML
// file, DEXOSC_* environment variables and command-line flags.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the per-user directory under ~/.config.
	AppDir = "dexcom-osc-bridge"
	// ConfigFileName is the optional settings file in AppDir.
	ConfigFileName = "config.yaml"
	// CredentialFileName is the encrypted credential file in AppDir.
	CredentialFileName = "dexcom_credentials.json"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DEXOSC"
)

// Config is the effective configuration.
type Config struct {
	CredentialFile string    `yaml:"cred_file" mapstructure:"cred_file"`
	LogLevel       string    `yaml:"log_level" mapstructure:"log_level"`
	Run            RunConfig `yaml:"run" mapstructure:"run"`

	// Source is the settings file that was read, empty when none.
	Source string `yaml:"-" mapstructure:"-"`
}

// RunConfig configures the bridge loop.
type RunConfig struct {
	QuestIP          string        `yaml:"quest_ip" mapstructure:"quest_ip"`
	QuestPort        int           `yaml:"quest_port" mapstructure:"quest_port"`
	Interval         time.Duration `yaml:"interval" mapstructure:"interval"`
	MinDelta         int           `yaml:"min_delta" mapstructure:"min_delta"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout" mapstructure:"discovery_timeout"`
	MetricsAddr      string        `yaml:"metrics_addr" mapstructure:"metrics_addr"`
	HistoryFile      string        `yaml:"history_file" mapstructure:"history_file"`
}

// Viper keys.
const (
	KeyCredentialFile   = "cred_file"
	KeyLogLevel         = "log_level"
	KeyQuestIP          = "run.quest_ip"
	KeyQuestPort        = "run.quest_port"
	KeyInterval         = "run.interval"
	KeyMinDelta         = "run.min_delta"
	KeyDiscoveryTimeout = "run.discovery_timeout"
	KeyMetricsAddr      = "run.metrics_addr"
	KeyHistoryFile      = "run.history_file"
)

// YAML renders the configuration. Durations are written as strings.
func (c *Config) YAML() ([]byte, error) {
	type runYAML struct {
		QuestIP          string `yaml:"quest_ip"`
		QuestPort        int    `yaml:"quest_port"`
		Interval         string `yaml:"interval"`
		MinDelta         int    `yaml:"min_delta"`
		DiscoveryTimeout string `yaml:"discovery_timeout"`
		MetricsAddr      string `yaml:"metrics_addr,omitempty"`
		HistoryFile      string `yaml:"history_file,omitempty"`
	}
	out := struct {
		CredentialFile string  `yaml:"cred_file"`
		LogLevel       string  `yaml:"log_level"`
		Run            runYAML `yaml:"run"`
	}{
		CredentialFile: c.CredentialFile,
		LogLevel:       c.LogLevel,
		Run: runYAML{
			QuestIP:          c.Run.QuestIP,
			QuestPort:        c.Run.QuestPort,
			Interval:         c.Run.Interval.String(),
			MinDelta:         c.Run.MinDelta,
			DiscoveryTimeout: c.Run.DiscoveryTimeout.String(),
			MetricsAddr:      c.Run.MetricsAddr,
			HistoryFile:      c.Run.HistoryFile,
		},
	}
	return yaml.Marshal(out)
}
