// Package config loads the bot configuration from defaults, an
// optional TOML file, and FEDCASE_-prefixed environment variables, in
// that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration.
type Config struct {
	Bot struct {
		Token   string `koanf:"token"`
		OwnerID int64  `koanf:"owner_id"`
	} `koanf:"bot"`

	Store struct {
		// Backend selects the snapshot store: json, bolt, or sqlite.
		Backend     string `koanf:"backend"`
		Path        string `koanf:"path"`
		EvidenceDir string `koanf:"evidence_dir"`
	} `koanf:"store"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`

	Metrics struct {
		// Listen is the address for the Prometheus endpoint. Empty
		// disables it.
		Listen string `koanf:"listen"`
	} `koanf:"metrics"`

	Broadcast struct {
		Concurrency int `koanf:"concurrency"`
	} `koanf:"broadcast"`
}

// Load reads the configuration. configPath may be empty, in which case
// default locations are tried.
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"store.backend":         "json",
		"store.path":            "data/fedcase.json",
		"store.evidence_dir":    "data/evidence",
		"log.level":             "info",
		"log.format":            "console",
		"broadcast.concurrency": 8,
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./fedcase.toml", "$HOME/.fedcase.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	k.Load(env.Provider("FEDCASE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "FEDCASE_")), "_", ".", 1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required")
	}
	if c.Bot.OwnerID <= 0 {
		return fmt.Errorf("bot.owner_id is required")
	}
	switch c.Store.Backend {
	case "json", "bolt", "sqlite":
	default:
		return fmt.Errorf("store.backend must be json, bolt, or sqlite, got %q", c.Store.Backend)
	}
	return nil
}
