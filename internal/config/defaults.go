package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/providers/confmap"

	"github.com/dayloop/dayloop/internal/constants"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"data_dir": DefaultDataDir(),
		"storage":  "", // empty = <data_dir>/dayloop.db
		"debug":    false,
		"agent": map[string]interface{}{
			"listen_host":          "127.0.0.1",
			"monitor_interval_sec": 30,
			"wake_gap_sec":         90,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

// DefaultDataDir returns the per-user data directory for the app. Falls back
// to the working directory when the user config dir cannot be resolved.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + string(filepath.Separator) + constants.AppName
	}
	return filepath.Join(dir, constants.AppName)
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), constants.DefaultConfigFileName)
}
