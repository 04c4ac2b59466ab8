/*
PURPOSE:
  Defines the configuration structure and loading logic for burnbench.
  Everything the tool touches outside its own process (cache locations,
  artifact directory, identity provider endpoints, results service) comes
  from here so nothing reaches for ambient global state.

REQUIREMENTS:
  User-specified:
  - Allow overriding the results/artifact/cache directories and the share
    endpoint without rebuilding.

  Implementation-discovered:
  - Needs YAML parsing.
  - Device-flow endpoints must be swappable for a mock provider in tests.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/auth (via cli wiring)
  - Dependencies: gopkg.in/yaml.v3

ERROR HANDLING:
  - Returns explicit error if a named config file is unreadable or invalid.
  - A missing default file is not an error (defaults apply).

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults must produce a working tool with no file present.

USAGE:
  cfg, err := config.Load("burnbench.yaml")

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update Default() when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthConfig holds the identity provider endpoints for the device flow.
// The defaults target GitHub, which is what the shared results service
// authenticates against.
type AuthConfig struct {
	ClientID      string `yaml:"client_id"`
	Scope         string `yaml:"scope"`
	DeviceCodeURL string `yaml:"device_code_url"`
	TokenURL      string `yaml:"token_url"`
	APIURL        string `yaml:"api_url"`
}

// Config represents the full configuration for burnbench.
type Config struct {
	// ResultsDir is where local report files (JSON + CSV) land.
	ResultsDir string `yaml:"results_dir"`
	// ArtifactDir is searched before $PATH for per-backend runner binaries.
	ArtifactDir string `yaml:"artifact_dir"`
	// CacheDir holds the persisted auth token.
	CacheDir string `yaml:"cache_dir"`
	// UnitTimeout bounds a single (benchmark, backend) execution.
	UnitTimeout time.Duration `yaml:"unit_timeout"`
	// ShareURL is the results service endpoint reports are uploaded to.
	ShareURL  string     `yaml:"share_url"`
	UserAgent string     `yaml:"user_agent"`
	Auth      AuthConfig `yaml:"auth"`
}

// Default returns the default configuration.
func Default() *Config {
	cache := "."
	if dir, err := os.UserCacheDir(); err == nil {
		cache = filepath.Join(dir, "burnbench")
	}
	return &Config{
		ResultsDir:  filepath.Join(cache, "results"),
		ArtifactDir: "",
		CacheDir:    cache,
		UnitTimeout: 10 * time.Minute,
		ShareURL:    "https://bench.apertureless.dev/v1/reports",
		UserAgent:   "burnbench",
		Auth: AuthConfig{
			ClientID:      "Iv1.84002254a02791f3",
			Scope:         "",
			DeviceCodeURL: "https://github.com/login/device/code",
			TokenURL:      "https://github.com/login/oauth/access_token",
			APIURL:        "https://api.github.com",
		},
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file is found, returns the default config.
func Load(path string) (*Config, error) {
	cfg := Default()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		// Search for defaults
		defaults := []string{"burnbench.yaml", ".burnbench.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}
