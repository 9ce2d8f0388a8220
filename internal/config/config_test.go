package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medsure/claims-client/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Env.Environment)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.True(t, cfg.IsDevelopment())
	require.NotEmpty(t, cfg.Store.Path)
}

func TestAPIBaseURLTable(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		platform    string
		override    string
		want        string
	}{
		{"dev android uses emulator loopback", "development", "android", "", "http://10.0.2.2:8080/api"},
		{"dev ios uses localhost", "development", "ios", "", "http://localhost:8080/api"},
		{"dev unknown platform uses localhost", "development", "", "", "http://localhost:8080/api"},
		{"dev physical device uses lan host", "development", "device", "", "http://192.168.1.100:8080/api"},
		{"production ignores platform", "production", "android", "", "https://api.medsure.io/api"},
		{"override wins", "production", "android", "https://staging.example.com/api", "https://staging.example.com/api"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Load("")
			require.NoError(t, err)
			cfg.Env.Environment = tc.environment
			cfg.Env.Platform = tc.platform
			cfg.API.BaseURL = tc.override
			require.Equal(t, tc.want, cfg.APIBaseURL())
		})
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
env:
  environment: production
  log:
    level: debug
api:
  timeout: 5s
store:
  path: /tmp/claims-session.json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Env.Environment)
	require.Equal(t, "debug", cfg.Env.Log.Level)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, "/tmp/claims-session.json", cfg.Store.Path)
	require.False(t, cfg.IsDevelopment())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env:\n  environment: development\n"), 0o600))

	t.Setenv("CLAIMS_ENV_ENVIRONMENT", "production")
	t.Setenv("CLAIMS_API_BASEURL", "https://api.override.example/api")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Env.Environment)
	require.Equal(t, "https://api.override.example/api", cfg.APIBaseURL())
}

func TestMissingFileIsFine(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Env.Environment)
}
