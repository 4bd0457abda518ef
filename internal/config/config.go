// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads application settings.
//
// Precedence (highest to lowest): flags > DSB_ env vars > dsb.yaml > defaults.
// Nested keys are reached from the environment with a double underscore:
// DSB_TABLE__BORDER=full sets table.border.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	dtwidget "github.com/magpierre/fyne-datatable/widget"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DSB_"

// TableConfig holds the defaults applied to every data table.
type TableConfig struct {
	Border             string  `koanf:"border"`
	ShowDeselect       bool    `koanf:"show_deselect"`
	ShowFilterBar      bool    `koanf:"show_filter_bar"`
	ShowColumnSelector bool    `koanf:"show_column_selector"`
	MinColumnWidth     float64 `koanf:"min_column_width"`
}

// Config holds all application settings.
type Config struct {
	LogLevel   string        `koanf:"log_level"`
	LogFormat  string        `koanf:"log_format"`
	APITimeout time.Duration `koanf:"api_timeout"`
	// Profile is a Delta Sharing profile file opened at startup.
	Profile string      `koanf:"profile"`
	Table   TableConfig `koanf:"table"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"log_level":                  "info",
		"log_format":                 "text",
		"api_timeout":                "60s",
		"profile":                    "",
		"table.border":               "right",
		"table.show_deselect":        true,
		"table.show_filter_bar":      true,
		"table.show_column_selector": true,
		"table.min_column_width":     100.0,
	}
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"border":           "table.border",
	"min-column-width": "table.min_column_width",
}

// findConfigFile returns explicit, else the first dsb.yaml or dsb.yml in the
// working directory or the user config directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "dsb"))
	}
	for _, dir := range dirs {
		for _, name := range []string{"dsb.yaml", "dsb.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// Load reads the configuration. cfgFile may be empty; flags may be nil.
// Only flags that were set on the command line override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q (want text or json)", ErrInvalidConfig, c.LogFormat)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("%w: api_timeout must be positive, got %s", ErrInvalidConfig, c.APITimeout)
	}
	if c.Table.MinColumnWidth < 0 {
		return fmt.Errorf("%w: table.min_column_width must not be negative", ErrInvalidConfig)
	}
	if _, err := dtwidget.ParseBorderStyle(c.Table.Border); err != nil {
		return fmt.Errorf("%w: table.border: %w", ErrInvalidConfig, err)
	}
	return nil
}

// WidgetConfig returns the data table configuration the settings describe.
func (c *Config) WidgetConfig() dtwidget.Config {
	config := dtwidget.DefaultConfig()
	if border, err := dtwidget.ParseBorderStyle(c.Table.Border); err == nil {
		config.Border = border
	}
	config.ShowDeselect = c.Table.ShowDeselect
	config.ShowFilterBar = c.Table.ShowFilterBar
	config.ShowColumnSelector = c.Table.ShowColumnSelector
	config.MinColumnWidth = float32(c.Table.MinColumnWidth)
	return config
}
