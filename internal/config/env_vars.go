package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AppName     string `env:"APP_NAME" envDefault:"Mitti Mantra"`
	DataFolder  string `env:"DATA_FOLDER" envDefault:"./data"`
	Environment string `env:"ENV" envDefault:"DEV"`
	LandingPath string `env:"LANDING_PATH" envDefault:"/"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetDataFolder() string {
	return e.DataFolder
}

func (e EnvVars) GetEnv() string {
	if e.Environment == "" {
		return "DEV"
	}
	return e.Environment
}

// GetLandingPath is where the browser goes after a successful login or registration.
func (e EnvVars) GetLandingPath() string {
	if e.LandingPath == "" || !strings.HasPrefix(e.LandingPath, "/") {
		return "/"
	}
	return e.LandingPath
}
