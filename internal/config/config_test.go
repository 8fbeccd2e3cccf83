package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Point HOME somewhere empty so a developer's real overrides file
	// cannot leak into the test.
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, DefaultRegistryFile, cfg.RegistryFile)
	assert.Equal(t, DefaultBugzillaURL, cfg.Bugzilla.URL)
	assert.Empty(t, cfg.Bugzilla.APIKey)
	assert.Equal(t, DefaultLookupTimeout, cfg.Bugzilla.Timeout)
	assert.Equal(t, DefaultLookupWorkers, cfg.Bugzilla.Workers)
	assert.Equal(t, DefaultExportFormat, cfg.Export.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MODIR_BUGZILLA_API_KEY", "secret-key")
	t.Setenv("MODIR_BUGZILLA_TIMEOUT", "5s")
	t.Setenv("MODIR_REGISTRY_FILE", "owners.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Bugzilla.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Bugzilla.Timeout)
	assert.Equal(t, "owners.yaml", cfg.RegistryFile)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Bugzilla.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Bugzilla.Timeout = -time.Second },
			wantErr: "timeout",
		},
		{
			name:    "bad export format",
			mutate:  func(c *Config) { c.Export.Format = "pdf" },
			wantErr: "export.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Bugzilla: BugzillaConfig{
					URL:     DefaultBugzillaURL,
					Timeout: DefaultLookupTimeout,
					Workers: DefaultLookupWorkers,
				},
				Export: ExportConfig{Format: "md"},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
