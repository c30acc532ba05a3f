// Package config loads tool settings from the user config directory and
// AUTODOC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds everything tunable outside of per-run flags.
type Settings struct {
	Endpoint      string  `mapstructure:"endpoint"`
	APIKey        string  `mapstructure:"api-key"`
	Model         string  `mapstructure:"model"`
	Prompt        string  `mapstructure:"prompt"`
	MaxConcurrent int     `mapstructure:"max-concurrent"`
	Scale         float64 `mapstructure:"scale"`
	Speed         float64 `mapstructure:"speed"`
	OutputRoot    string  `mapstructure:"output-root"`
	SequenceRoot  string  `mapstructure:"sequence-dir"`
}

// SequenceDir returns the directory sequences are stored in, defaulting to
// the user config directory when unset.
func (s Settings) SequenceDir() string {
	if s.SequenceRoot != "" {
		return s.SequenceRoot
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "autodoc-sequences")
	}
	return filepath.Join(base, "autodoc-cli", "sequences")
}

// Load reads config.yaml from the user config directory, overlaid with
// AUTODOC_* environment variables. A missing config file is fine; defaults
// apply.
func Load() (Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if base, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(base, "autodoc-cli"))
	}
	v.SetEnvPrefix("AUTODOC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("max-concurrent", 5)
	v.SetDefault("scale", 0.5)
	v.SetDefault("speed", 1.0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	return s, nil
}
