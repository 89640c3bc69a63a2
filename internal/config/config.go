package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	BackendConfig
	CredentialConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLandingPath() string
}

type mainConfig struct {
	EnvVars
	Backend
	Credentials
}

// New reads the configuration from the process environment.
func New() (Config, error) {
	c := mainConfig{}
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// MustNew is New for callers that cannot continue without configuration.
func MustNew() Config {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}
