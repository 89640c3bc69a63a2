package config

import "strings"

type BackendConfig interface {
	GetAPIURL() string
}

// Backend points the dashboard at the remote prediction service.
type Backend struct {
	APIURL string `env:"API_URL" envDefault:"http://localhost:8000"`
}

var _ BackendConfig = Backend{}

func (b Backend) GetAPIURL() string {
	return strings.TrimRight(b.APIURL, "/")
}
