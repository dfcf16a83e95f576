package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config is the full server configuration, populated from the
// environment. X credentials are optional at startup: the resize
// endpoints work without them, the auth and publish endpoints
// report a configuration error instead.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// OAuth2 app credentials for the authorization code flow
	ClientID     string `env:"X_CLIENT_ID"`
	ClientSecret string `env:"X_CLIENT_SECRET"`
	CallbackURL  string `env:"X_CALLBACK_URL" envDefault:"http://localhost:8080/auth/callback" validate:"url"`

	// OAuth1 app credentials for media upload
	APIKey       string `env:"X_API_KEY"`
	APISecret    string `env:"X_API_SECRET"`
	AccessToken  string `env:"X_ACCESS_TOKEN"`
	AccessSecret string `env:"X_ACCESS_SECRET"`

	// CookieSealKey enables JWE sealing of token cookies when set.
	// Base64 encoded, must decode to 32 bytes.
	CookieSealKey string `env:"COOKIE_SEAL_KEY"`

	// SecureCookies should be on in production deployments.
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`

	// DimensionsPath optionally overrides the built-in banner presets.
	DimensionsPath string `env:"DIMENSIONS_PATH"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return cfg, nil
}

// HasOAuthCredentials reports whether the OAuth2 app credentials
// needed for the authorization flow are configured.
func (c *Config) HasOAuthCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// HasMediaCredentials reports whether the OAuth1 credential pair
// needed for media upload is configured.
func (c *Config) HasMediaCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}
