// Package config loads the client configuration: a YAML file layered under
// CLAIMS_-prefixed environment variables. The API base URL is resolved from
// the environment/platform pair unless an explicit override is set.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "CLAIMS_"

// Development base URLs per platform. The Android emulator reaches the host
// machine through its own loopback alias; a physical device needs the host's
// LAN address.
const (
	devAndroidBaseURL = "http://10.0.2.2:8080/api"
	devDefaultBaseURL = "http://localhost:8080/api"
	devDeviceBaseURL  = "http://192.168.1.100:8080/api"
	prodBaseURL       = "https://api.medsure.io/api"
)

// Config is the full client configuration.
type Config struct {
	Env struct {
		Environment string `koanf:"environment"` // development or production
		Platform    string `koanf:"platform"`    // android, ios, or device
		Log         struct {
			Level  string `koanf:"level"`
			Pretty bool   `koanf:"pretty"`
		} `koanf:"log"`
	} `koanf:"env"`

	API struct {
		BaseURL string        `koanf:"baseurl"` // explicit override, wins over the table
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"api"`

	Store struct {
		Path       string `koanf:"path"`
		Passphrase string `koanf:"passphrase"`
	} `koanf:"store"`
}

// Load reads configuration from path (optional, skipped when the file does
// not exist) and from CLAIMS_-prefixed environment variables, e.g.
// CLAIMS_API_BASEURL or CLAIMS_ENV_PLATFORM.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "[config.Load] read %s", path)
			}
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[config.Load] load env variables")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] unmarshal")
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env.Environment == "" {
		c.Env.Environment = "development"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Env.Log.Level == "" {
		c.Env.Log.Level = "info"
	}
	if c.Store.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.Store.Path = home + "/.claims/session.json"
	}
}

// APIBaseURL resolves the backend base URL. An explicit override always
// wins; otherwise the environment/platform table decides.
func (c *Config) APIBaseURL() string {
	if c.API.BaseURL != "" {
		return c.API.BaseURL
	}
	if strings.EqualFold(c.Env.Environment, "production") {
		return prodBaseURL
	}
	switch strings.ToLower(c.Env.Platform) {
	case "android":
		return devAndroidBaseURL
	case "device":
		return devDeviceBaseURL
	default:
		return devDefaultBaseURL
	}
}

// IsDevelopment reports whether the client runs against a dev backend.
func (c *Config) IsDevelopment() bool {
	return !strings.EqualFold(c.Env.Environment, "production")
}
