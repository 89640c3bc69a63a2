// Package backendfake is an in-process stand-in for the prediction backend.
// It speaks the same wire format (JWT bearer tokens, {"detail": ...} errors)
// and returns canned predictions. Tests and cmd/fakebackend use it.
package backendfake

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/jrsteele09/mitti-dashboard/users"
	fakeuserrepo "github.com/jrsteele09/mitti-dashboard/users/repofake"
	"github.com/rs/zerolog/log"
)

const defaultTokenTTL = 30 * time.Minute

// RecordedRequest is what the fake saw of one call.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
}

type Option func(*Server)

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// WithSecret sets the HMAC key tokens are signed with.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

type Server struct {
	mux      *http.ServeMux
	users    *fakeuserrepo.FakeUserRepo
	secret   []byte
	tokenTTL time.Duration

	mu          sync.Mutex
	issued      map[string]struct{}
	revoked     map[string]struct{}
	requests    []RecordedRequest
	meStatus    int
	held        map[string]chan struct{}
	unavailable map[string]bool
}

func New(opts ...Option) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		users:       fakeuserrepo.NewFakeUserRepo(),
		secret:      []byte(uuid.NewString()),
		tokenTTL:    defaultTokenTTL,
		issued:      make(map[string]struct{}),
		revoked:     make(map[string]struct{}),
		held:        make(map[string]chan struct{}),
		unavailable: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("POST "+backend.PathLogin, s.login)
	s.mux.HandleFunc("POST "+backend.PathRegister, s.register)
	s.mux.HandleFunc("POST "+backend.PathLogout, s.logout)
	s.mux.HandleFunc("GET "+backend.PathMe, s.me)

	s.mux.HandleFunc("GET "+backend.PathHealth, s.health)
	s.mux.HandleFunc("POST "+backend.PathPredictCrop, s.optionalAuth(s.predictCrop))
	s.mux.HandleFunc("POST "+backend.PathPredictDisease, s.optionalAuth(s.predictDisease))
	s.mux.HandleFunc("POST "+backend.PathIrrigation, s.optionalAuth(s.irrigation))
	s.mux.HandleFunc("POST "+backend.PathPestControl, s.optionalAuth(s.pestControl))
	s.mux.HandleFunc("GET "+backend.PathCropPatterns, s.optionalAuth(s.cropPatterns))
	s.mux.HandleFunc("GET "+backend.PathFarmerInsights, s.optionalAuth(s.farmerInsights))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
	})
	down := s.unavailable[r.URL.Path]
	hold := s.held[r.URL.Path]
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}
	if down {
		writeDetail(w, http.StatusServiceUnavailable, "Service is not available. Model not loaded.")
		return
	}
	s.mux.ServeHTTP(w, r)
}

// AddUser creates an account directly, bypassing the register endpoint.
func (s *Server) AddUser(username, email, password string, fullName *string) (*users.User, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &users.User{Username: username, Email: email, FullName: fullName, PasswordHash: hash}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	return s.users.GetByUsername(username)
}

// IssueToken mints a valid token for an existing user.
func (s *Server) IssueToken(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

func (s *Server) issueLocked(username string) (string, error) {
	now := time.Now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	s.issued[jti] = struct{}{}
	return signed, nil
}

// RevokeAll makes every token issued so far fail with 401.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti := range s.issued {
		s.revoked[jti] = struct{}{}
	}
}

// FailProfile makes /api/auth/me answer with status; 0 restores normal behavior.
func (s *Server) FailProfile(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meStatus = status
}

// HoldProfile blocks /api/auth/me until the returned release func is called.
func (s *Server) HoldProfile() (release func()) {
	return s.Hold(backend.PathMe)
}

// Hold blocks calls to path, after they are recorded, until the returned
// release func is called.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.held[path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.held, path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// SetUnavailable answers 503 for path until called again with false.
func (s *Server) SetUnavailable(path string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable[path] = down
}

// Requests returns a copy of every call seen so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestsTo filters Requests by path.
func (s *Server) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// authenticate resolves the bearer token on r to a user.
func (s *Server) authenticate(r *http.Request) (*users.User, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, false
	}

	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(parts[1], &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, false
	}

	u, err := s.users.GetByUsername(claims.Subject)
	if err != nil {
		return nil, false
	}
	return u, true
}

// optionalAuth lets anonymous calls through but rejects a bad bearer token,
// the way the prediction endpoints behave behind an auth-aware gateway.
func (s *Server) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			if _, ok := s.authenticate(r); !ok {
				unauthorized(w)
				return
			}
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("fake backend: encode response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}
