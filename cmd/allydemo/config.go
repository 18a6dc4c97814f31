package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/ally/pkg/logger"
	"github.com/dmitrymomot/ally/pkg/oauth"
)

type config struct {
	Addr            string        `env:"ADDRESS" envDefault:":8080" yaml:"address"`
	CookieSecret    string        `env:"COOKIE_SECRET" yaml:"cookie_secret"`
	CookieSecure    bool          `env:"COOKIE_SECURE" yaml:"cookie_secure"`
	RedisURL        string        `env:"REDIS_URL" yaml:"redis_url"`
	HTTPTimeout     time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s" yaml:"http_timeout"`
	StateTTL        time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m" yaml:"state_ttl"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s" yaml:"shutdown_timeout"`

	Log logger.Config `yaml:"log"`

	Bitbucket oauth.Config `envPrefix:"BITBUCKET_OAUTH_" yaml:"bitbucket"`
	GitHub    oauth.Config `envPrefix:"GITHUB_OAUTH_" yaml:"github"`
	Google    oauth.Config `envPrefix:"GOOGLE_OAUTH_" yaml:"google"`
}

var errNoProviders = errors.New("config: no oauth provider configured")

// loadConfig reads defaults and the environment, then overlays the YAML file
// at path when one is given. Keys present in the file win over the environment.
func loadConfig(path string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// providers returns the configs that carry a client ID, keyed by provider name.
func (c config) providers() map[string]oauth.Config {
	out := make(map[string]oauth.Config, 3)
	for name, pc := range map[string]oauth.Config{
		oauth.BitbucketProviderName: c.Bitbucket,
		oauth.GitHubProviderName:    c.GitHub,
		oauth.GoogleProviderName:    c.Google,
	} {
		if pc.ClientID != "" {
			out[name] = pc
		}
	}
	return out
}
