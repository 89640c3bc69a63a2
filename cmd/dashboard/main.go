package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/jrsteele09/mitti-dashboard/credentials"
	"github.com/jrsteele09/mitti-dashboard/gateway"
	"github.com/jrsteele09/mitti-dashboard/internal/config"
	"github.com/jrsteele09/mitti-dashboard/server"
	"github.com/jrsteele09/mitti-dashboard/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running dashboard")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Dashboard stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	slot, closeSlot, err := credentials.Open(c)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer func() {
		if err := closeSlot(); err != nil {
			log.Err(err).Msg("Closing credential store")
		}
	}()

	creds := credentials.NewStore(slot)
	events := gateway.NewEvents()
	api := backend.New(gateway.NewClient(c.GetAPIURL(), gateway.NewTransport(nil, creds, events)))
	sess := session.NewStore()

	dashboard, err := server.New(c, server.Services{
		Credentials: creds,
		Session:     sess,
		Events:      events,
		API:         api,
	})
	if err != nil {
		return err
	}
	defer dashboard.Close()

	// the server subscribes to invalidations before the startup check runs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess.Initialize(ctx, creds, api.Me)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: dashboard}
	go func() {
		if err := listenAndServe(httpServer); err != nil {
			log.Err(err).Msg("Listener stopped")
		}
	}()
	waitForStopSignal()
	return shutdown(httpServer)
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Dashboard listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
