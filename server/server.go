package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/mitti-dashboard/auth"
	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/jrsteele09/mitti-dashboard/credentials"
	"github.com/jrsteele09/mitti-dashboard/gateway"
	"github.com/jrsteele09/mitti-dashboard/internal/config"
	"github.com/jrsteele09/mitti-dashboard/session"
	"github.com/rs/zerolog/log"
)

// Services are the process-wide objects the dashboard renders from.
type Services struct {
	Credentials *credentials.Store
	Session     *session.Store
	Events      *gateway.Events
	API         *backend.Client
}

// SessionView is the read side of the session. Pages render from it; only the
// auth service writes the session.
type SessionView interface {
	Status() session.Status
	Snapshot() session.Snapshot
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	appName string
	mux     *http.ServeMux
	routes  []string
	pages   map[string]*template.Template

	session SessionView
	api     *backend.Client
	auth    *auth.Service
	unwatch func()
}

func New(config config.EnvConfig, services Services) (*Server, error) {
	s := &Server{
		env:     config.GetEnv(),
		appName: config.GetAppName(),
		mux:     http.NewServeMux(),
		session: services.Session,
		api:     services.API,
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}
	s.pages = pages

	s.auth = auth.NewService(services.API, services.Credentials, services.Session, navigator{},
		auth.WithLandingPath(config.GetLandingPath()))
	s.unwatch = s.auth.Watch(services.Events)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops reacting to invalidations and waits for background logout calls.
func (s *Server) Close() {
	s.unwatch()
	s.auth.Wait()
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func coloredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", coloredMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", coloredMethod(method), path, Red+error+ResetColor)
}
