package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/mitti-dashboard/gateway"
	"github.com/jrsteele09/mitti-dashboard/internal/errors"
	"github.com/jrsteele09/mitti-dashboard/session"
)

// redirectSuccess helper for htmx-aware redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// followNavigation redirects if a backend call made for this request asked to
// navigate, which happens when a login succeeded or the session was torn down.
// Only the first 401 for a credential raises the teardown, so a request that
// started authenticated and got its own 401 after another request ended the
// session is sent to the login page as well.
func (s *Server) followNavigation(w http.ResponseWriter, r *http.Request, errs ...error) bool {
	n := navigationFrom(r.Context())
	if n == nil {
		return false
	}
	path := n.get()
	if path == "" && n.startedAuthenticated && s.session.Status() != session.StatusAuthenticated {
		for _, err := range errs {
			if errors.Is(err, errors.ErrUnauthorized) {
				path = RouteLogin
				break
			}
		}
	}
	if path == "" {
		return false
	}
	redirectSuccess(w, r, path)
	return true
}

// errorMessage turns a backend failure into something a page can show.
func errorMessage(err error, fallback string) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if errors.Is(err, errors.ErrTransport) {
		return "Cannot reach the prediction service. Please try again later."
	}
	return fallback
}

// formFloats parses the named form fields as numbers.
func formFloats(form url.Values, names ...string) (map[string]float64, bool) {
	values := make(map[string]float64, len(names))
	for _, name := range names {
		v, err := strconv.ParseFloat(strings.TrimSpace(form.Get(name)), 64)
		if err != nil {
			return nil, false
		}
		values[name] = v
	}
	return values, true
}
