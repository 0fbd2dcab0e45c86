package console

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is read when present and no --config flag is given
const DefaultConfigFile = "console.yaml"

// Config holds console settings
type Config struct {
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"`
	Burst     int           `koanf:"burst"`
	PageSize  int           `koanf:"page_size"`
	View      string        `koanf:"view"`
	Status    string        `koanf:"status"`
	Height    int           `koanf:"height"`
	History   string        `koanf:"history"`
	LogLevel  string        `koanf:"log_level"`
	NoColor   bool          `koanf:"no_color"`
}

// LoadConfig loads configuration from defaults, a YAML file, CONSOLE_ environment
// variables and flags. Later sources win.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"base_url":   "http://localhost:8080/api/v1",
		"timeout":    "10s",
		"rate_limit": 5.0,
		"burst":      2,
		"page_size":  30,
		"view":       "TABLE",
		"status":     "OPEN",
		"height":     15,
		"history":    "",
		"log_level":  "warning",
		"no_color":   false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment variables: CONSOLE_BASE_URL -> base_url
	if err := k.Load(env.Provider("CONSOLE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CONSOLE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	return &cfg, nil
}
