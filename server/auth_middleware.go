package server

import (
	"net/http"

	"github.com/jrsteele09/mitti-dashboard/guard"
)

// RequireSession gates a privileged page on the session status. While the
// startup check is still running the visitor gets a loading placeholder that
// refreshes itself; nothing is redirected until the status is known.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch guard.Decide(s.session.Status()) {
			case guard.Allow:
				next(w, r)
			case guard.Redirect:
				redirectSuccess(w, r, RouteLogin)
			default:
				s.render(w, r, pageLoading, http.StatusOK, PageData{})
			}
		}
	}
}
