// Package config loads process-level configuration: defaults, then an
// optional YAML file, then DAYLOOP_-prefixed environment variables.
// User-facing preferences that change at runtime (reset hour, notification
// toggles) live in the storage settings instead; this package only covers
// what must be known before the store is opened.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/dayloop/dayloop/internal/constants"
)

type Config struct {
	DataDir string      `koanf:"data_dir" yaml:"data_dir"`
	Storage string      `koanf:"storage" yaml:"storage"` // storage path; .json selects the JSON provider
	Debug   bool        `koanf:"debug" yaml:"debug"`
	Agent   AgentConfig `koanf:"agent" yaml:"agent"`

	// Path is the config file this was loaded from (or would be written
	// to). Not part of the file itself.
	Path string `koanf:"-" yaml:"-"`
}

type AgentConfig struct {
	ListenHost         string `koanf:"listen_host" yaml:"listen_host"`
	MonitorIntervalSec int    `koanf:"monitor_interval_sec" yaml:"monitor_interval_sec"`
	// WakeGapSec is the monitor-tick gap, in seconds, beyond which the agent
	// assumes the machine was suspended and runs the missed-reset check.
	WakeGapSec int `koanf:"wake_gap_sec" yaml:"wake_gap_sec"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("DAYLOOP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DAYLOOP_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Path = configPath
	cfg.DataDir = expandPath(cfg.DataDir)
	if cfg.Storage == "" {
		cfg.Storage = filepath.Join(cfg.DataDir, constants.DefaultDBFileName)
	} else {
		cfg.Storage = expandPath(cfg.Storage)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.Agent.MonitorIntervalSec <= 0 {
		return fmt.Errorf("agent.monitor_interval_sec must be positive")
	}
	if c.Agent.WakeGapSec <= c.Agent.MonitorIntervalSec {
		return fmt.Errorf("agent.wake_gap_sec must be greater than agent.monitor_interval_sec")
	}
	return nil
}

// StatePath returns the location of the recovery state file.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, constants.DefaultStateFileName)
}

// WriteDefault writes a config file populated with the current values so
// users have something to edit. Refuses to overwrite an existing file.
func (c *Config) WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	raw, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
