// Command fakebackend serves the in-process fake prediction backend so the
// dashboard can be run without the real service.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jrsteele09/mitti-dashboard/internal/backendfake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	Port     string        `env:"FAKE_BACKEND_PORT" envDefault:"8000"`
	TokenTTL time.Duration `env:"FAKE_BACKEND_TOKEN_TTL" envDefault:"30m"`
	Username string        `env:"FAKE_BACKEND_USER" envDefault:"farmer1"`
	Password string        `env:"FAKE_BACKEND_PASSWORD" envDefault:"secret12"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	var opts options
	if err := env.Parse(&opts); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	fake := backendfake.New(backendfake.WithTokenTTL(opts.TokenTTL))
	if opts.Username != "" {
		if _, err := fake.AddUser(opts.Username, opts.Username+"@example.com", opts.Password, nil); err != nil {
			log.Fatal().Err(err).Msg("Seeding user")
		}
		log.Info().Str("username", opts.Username).Msg("Seeded demo user")
	}

	addr := fmt.Sprintf(":%s", opts.Port)
	log.Info().Str("addr", addr).Msg("Fake backend listening")
	if err := http.ListenAndServe(addr, fake); err != nil {
		log.Fatal().Err(err).Msg("Fake backend stopped")
	}
}
