// Package config loads process-wide modir settings.
//
// Settings resolve from three sources with clear precedence:
//  1. Explicit values set by the caller (flags) - highest priority
//  2. Environment variables with the MODIR_ prefix (MODIR_BUGZILLA_API_KEY, ...)
//  3. An optional overrides file at ~/.modir/settings.yaml - lowest priority
//
// The resulting Config is passed explicitly into the clean and lookup entry
// points so the core packages stay testable without environment setup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for every setting. Durations are expressed in Go duration syntax
// in both the overrides file and environment variables.
const (
	DefaultRegistryFile  = "modir.yaml"
	DefaultBugzillaURL   = "https://bugzilla.mozilla.org/rest"
	DefaultLookupTimeout = 30 * time.Second
	DefaultLookupWorkers = 4
	DefaultExportFormat  = "rst"
	DefaultSearchfoxURL  = "https://searchfox.org"
	DefaultPeopleURL     = "https://people.mozilla.org/s?query="
	DefaultReviewURL     = "https://phabricator.services.mozilla.com"
)

// Config holds all process-wide settings.
type Config struct {
	Debug bool `mapstructure:"debug"`

	// RegistryFile is the path of the YAML registry relative to the
	// working directory, unless overridden per command with --path.
	RegistryFile string `mapstructure:"registry_file"`

	Bugzilla BugzillaConfig `mapstructure:"bugzilla"`
	Export   ExportConfig   `mapstructure:"export"`
}

// BugzillaConfig configures the identity lookup client.
type BugzillaConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	Workers int           `mapstructure:"workers"`
}

// ExportConfig configures documentation export.
type ExportConfig struct {
	Format       string `mapstructure:"format"`
	SearchfoxURL string `mapstructure:"searchfox_url"`
	PeopleURL    string `mapstructure:"people_url"`
	ReviewURL    string `mapstructure:"review_url"`
}

// Load reads settings from the overrides file and environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MODIR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The overrides file is optional; a missing file is not an error.
	if dir, err := overridesDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading settings overrides: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks setting values that would otherwise fail deep inside an
// operation.
func (c *Config) Validate() error {
	if c.Bugzilla.Workers < 1 {
		return fmt.Errorf("bugzilla.workers must be at least 1, got %d", c.Bugzilla.Workers)
	}
	if c.Bugzilla.Timeout <= 0 {
		return fmt.Errorf("bugzilla.timeout must be positive, got %s", c.Bugzilla.Timeout)
	}
	switch c.Export.Format {
	case "rst", "md":
	default:
		return fmt.Errorf("export.format must be rst or md, got %q", c.Export.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("registry_file", DefaultRegistryFile)
	v.SetDefault("bugzilla.url", DefaultBugzillaURL)
	v.SetDefault("bugzilla.api_key", "")
	v.SetDefault("bugzilla.timeout", DefaultLookupTimeout)
	v.SetDefault("bugzilla.workers", DefaultLookupWorkers)
	v.SetDefault("export.format", DefaultExportFormat)
	v.SetDefault("export.searchfox_url", DefaultSearchfoxURL)
	v.SetDefault("export.people_url", DefaultPeopleURL)
	v.SetDefault("export.review_url", DefaultReviewURL)
}

// overridesDir returns the directory holding the optional settings file.
func overridesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".modir"), nil
}
