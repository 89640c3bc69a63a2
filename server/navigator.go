package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/mitti-dashboard/session"
	"github.com/rs/zerolog/log"
)

type navigationKey struct{}

// navigation is the per-request navigation slot. Backend calls made while
// serving a request may run on several goroutines, so it is locked.
type navigation struct {
	mu   sync.Mutex
	path string

	// startedAuthenticated is the session status when the request came in.
	startedAuthenticated bool
}

func (n *navigation) set(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
}

func (n *navigation) get() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func withNavigation(ctx context.Context, authenticated bool) context.Context {
	return context.WithValue(ctx, navigationKey{}, &navigation{startedAuthenticated: authenticated})
}

func navigationFrom(ctx context.Context) *navigation {
	n, _ := ctx.Value(navigationKey{}).(*navigation)
	return n
}

// navigator is the auth service's navigation sink. A navigation lands in the
// slot of the request whose backend call caused it; one raised outside any
// page request has nowhere to go and is dropped.
type navigator struct{}

func (navigator) Navigate(ctx context.Context, path string) {
	n := navigationFrom(ctx)
	if n == nil {
		log.Debug().Str("path", path).Msg("navigation outside a page request, dropped")
		return
	}
	n.set(path)
}

// NavigationMiddleware gives every request its own navigation slot.
func (s *Server) NavigationMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authenticated := s.session.Status() == session.StatusAuthenticated
		next(w, r.WithContext(withNavigation(r.Context(), authenticated)))
	}
}
