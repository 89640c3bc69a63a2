package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/rs/zerolog/log"
)

// IndexData is the home page model.
type IndexData struct {
	Health *backend.HealthResponse
}

// IndexHandler renders the home page with the backend's health
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := IndexData{}
		health, err := s.api.Health(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("Backend health check failed")
		} else {
			data.Health = health
		}
		s.render(w, r, pageIndex, http.StatusOK, PageData{Data: data})
	}
}

func (s *Server) AboutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageAbout, http.StatusOK, PageData{})
	}
}

// HealthzHandler reports that the dashboard process is up and what it knows
// about the session. It never calls the backend.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"session": string(s.session.Status()),
		})
	}
}
