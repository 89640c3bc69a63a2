package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/jrsteele09/mitti-dashboard/internal/utils"
	"github.com/rs/zerolog/log"
)

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageLogin, http.StatusOK, PageData{Error: r.URL.Query().Get("error")})
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			s.render(w, r, pageLogin, http.StatusBadRequest, PageData{Error: "Username and password are required", Form: r.PostForm})
			return
		}

		result := s.auth.Login(r.Context(), username, password)
		if !result.Success {
			s.render(w, r, pageLogin, http.StatusUnauthorized, PageData{Error: result.Error, Form: r.PostForm})
			return
		}
		if !s.followNavigation(w, r) {
			redirectSuccess(w, r, RouteHome)
		}
	}
}

func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageRegister, http.StatusOK, PageData{})
	}
}

// RegisterSubmissionHandler creates the account and signs in with it
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		req := backend.RegisterRequest{
			Email:    strings.TrimSpace(r.FormValue("email")),
			Username: strings.TrimSpace(r.FormValue("username")),
			Password: r.FormValue("password"),
		}
		if fullName := strings.TrimSpace(r.FormValue("full_name")); fullName != "" {
			req.FullName = utils.Ptr(fullName)
		}

		result := s.auth.Register(r.Context(), req)
		if !result.Success {
			s.render(w, r, pageRegister, http.StatusBadRequest, PageData{Error: result.Error, Form: r.PostForm})
			return
		}
		if !s.followNavigation(w, r) {
			redirectSuccess(w, r, RouteHome)
		}
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Logout(r.Context())
		log.Info().Msg("Logged out")
		if !s.followNavigation(w, r) {
			redirectSuccess(w, r, RouteLogin)
		}
	}
}
