package auth

import (
	"context"
	"sync"

	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/jrsteele09/mitti-dashboard/gateway"
	"github.com/jrsteele09/mitti-dashboard/internal/errors"
	"github.com/jrsteele09/mitti-dashboard/users"
	"github.com/rs/zerolog/log"
)

const (
	// LoginPath is the anonymous entry point.
	LoginPath = "/login"
	// DefaultLandingPath is where a successful login or registration lands.
	DefaultLandingPath = "/"

	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
)

// Navigator receives navigation requests. The service never routes itself.
// ctx is the context of the call that caused the navigation, which lets a
// server deliver it to the request that made that call.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to a Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) { f(ctx, path) }

// Result is what the login and registration pages render. Error is only set
// when Success is false.
type Result struct {
	Success bool
	Error   string
}

// Backend is the part of the backend API the service talks to.
type Backend interface {
	Login(ctx context.Context, req backend.LoginRequest) (*backend.AuthResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.AuthResponse, error)
	Logout(ctx context.Context, credential string) error
}

// Credentials is the persistent credential slot.
type Credentials interface {
	Current() string
	Save(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}

// Session is the write side of the session store.
type Session interface {
	SetAuthenticated(credential string, identity *users.User) error
	SetAnonymous()
	Revoke(credential string) bool
}

// Service runs login, registration and logout and reacts to credential
// invalidations raised by the request pipeline. Under normal flow it is the
// only writer of the session and the credential slot.
type Service struct {
	api         Backend
	creds       Credentials
	session     Session
	nav         Navigator
	landingPath string

	background sync.WaitGroup
}

// ServiceOption modifies a Service at construction.
type ServiceOption func(*Service)

// WithLandingPath sets where successful logins navigate to.
func WithLandingPath(path string) ServiceOption {
	return func(s *Service) {
		if path != "" {
			s.landingPath = path
		}
	}
}

func NewService(api Backend, creds Credentials, sess Session, nav Navigator, opts ...ServiceOption) *Service {
	s := &Service{
		api:         api,
		creds:       creds,
		session:     sess,
		nav:         nav,
		landingPath: DefaultLandingPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Watch subscribes the service to the pipeline's invalidation events.
func (s *Service) Watch(events *gateway.Events) (unsubscribe func()) {
	return events.Subscribe(s.HandleInvalidation)
}

func (s *Service) Login(ctx context.Context, username, password string) Result {
	resp, err := s.api.Login(ctx, backend.LoginRequest{Username: username, Password: password})
	if err != nil {
		log.Info().Err(err).Str("username", username).Msg("auth: login rejected")
		return failure(err, loginFailed)
	}
	return s.establish(ctx, resp, loginFailed)
}

func (s *Service) Register(ctx context.Context, req backend.RegisterRequest) Result {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		log.Info().Err(err).Str("username", req.Username).Msg("auth: registration rejected")
		return failure(err, registrationFailed)
	}
	return s.establish(ctx, resp, registrationFailed)
}

// establish stores the credential, makes the session authenticated and
// navigates to the landing view, in that order.
func (s *Service) establish(ctx context.Context, resp *backend.AuthResponse, fallback string) Result {
	if resp == nil || resp.AccessToken == "" || resp.User == nil {
		log.Error().Msg("auth: backend accepted the request but returned no credential or user")
		return Result{Error: fallback}
	}

	if err := s.creds.Save(ctx, resp.AccessToken); err != nil {
		// the session still works for this process, it just won't survive a restart
		log.Err(err).Msg("auth: persisting credential")
	}
	if err := s.session.SetAuthenticated(resp.AccessToken, resp.User); err != nil {
		log.Err(err).Msg("auth: setting session")
		return Result{Error: fallback}
	}

	log.Info().Int("user_id", resp.User.ID).Str("username", resp.User.Username).Msg("auth: session established")
	s.nav.Navigate(ctx, s.landingPath)
	return Result{Success: true}
}

// Logout ends the session locally and always succeeds. The backend is told
// in the background with the old credential; its answer is ignored.
func (s *Service) Logout(ctx context.Context) {
	old := s.creds.Current()
	if err := s.creds.Clear(ctx); err != nil {
		log.Err(err).Msg("auth: clearing credential on logout")
	}
	s.session.SetAnonymous()
	s.nav.Navigate(ctx, LoginPath)

	if old == "" {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.api.Logout(context.WithoutCancel(ctx), old); err != nil {
			log.Debug().Err(err).Msg("auth: backend logout failed, ignoring")
		}
	}()
}

// HandleInvalidation tears the session down after the pipeline cleared a
// rejected credential. Invalidations for a credential the session no longer
// holds change nothing.
func (s *Service) HandleInvalidation(inv gateway.Invalidation) {
	if !s.session.Revoke(inv.Credential) {
		return
	}
	log.Warn().Str("method", inv.Method).Str("path", inv.Path).Str("request_id", inv.RequestID).
		Msg("auth: credential rejected by backend, session ended")
	s.nav.Navigate(inv.Context(), LoginPath)
}

// Wait blocks until background logout calls have finished.
func (s *Service) Wait() {
	s.background.Wait()
}

func failure(err error, fallback string) Result {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return Result{Error: apiErr.Detail}
	}
	return Result{Error: fallback}
}
