package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const HeaderRequestID = "X-Request-ID"

// Credentials is the part of the credential store the pipeline needs.
type Credentials interface {
	Current() string
	ClearIf(ctx context.Context, credential string) (bool, error)
}

type credentialOverrideKey struct{}

// WithCredential makes the outgoing stage attach credential instead of the
// stored one. Used for calls that outlive the stored credential, such as the
// best-effort logout notification.
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialOverrideKey{}, credential)
}

func credentialFromContext(ctx context.Context) (string, bool) {
	c, ok := ctx.Value(credentialOverrideKey{}).(string)
	return c, ok
}

var _ http.RoundTripper = (*Transport)(nil)

type Transport struct {
	base   http.RoundTripper
	creds  Credentials
	events *Events
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, creds Credentials, events *Events) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if events == nil {
		events = NewEvents()
	}
	return &Transport{base: base, creds: creds, events: events}
}

// Events returns the stream Invalidations are published on.
func (t *Transport) Events() *Events {
	return t.events
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	credential, ok := credentialFromContext(req.Context())
	if !ok {
		credential = t.creds.Current()
	}
	if credential != "" {
		(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"}).SetAuthHeader(out)
	}

	requestID := out.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
		out.Header.Set(HeaderRequestID, requestID)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && credential != "" {
		t.invalidate(out, credential, requestID)
	}
	return resp, nil
}

func (t *Transport) invalidate(req *http.Request, credential, requestID string) {
	cleared, err := t.creds.ClearIf(req.Context(), credential)
	if err != nil {
		log.Err(err).Str("request_id", requestID).Msg("credential cleared in memory but not in storage")
	}
	if !cleared {
		log.Debug().Str("path", req.URL.Path).Str("request_id", requestID).Msg("401 for a credential that is no longer current")
		return
	}

	log.Warn().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", requestID).
		Msg("backend rejected credential, session torn down")

	t.events.emit(Invalidation{
		Credential: credential,
		Method:     req.Method,
		Path:       req.URL.Path,
		RequestID:  requestID,
		ctx:        req.Context(),
	})
}
