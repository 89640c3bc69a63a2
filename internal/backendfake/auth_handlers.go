package backendfake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/mitti-dashboard/backend"
	"github.com/jrsteele09/mitti-dashboard/users"
	fakeuserrepo "github.com/jrsteele09/mitti-dashboard/users/repofake"
)

type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req backend.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := s.users.GetByUsername(req.Username)
	if err != nil || !users.CheckPasswordHash(req.Password, u.PasswordHash) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	s.writeAuthResponse(w, http.StatusOK, u)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req backend.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Password) > users.MaxPasswordLength {
		writeDetail(w, http.StatusBadRequest, "Password too long (max 50 characters)")
		return
	}
	if err := users.ValidateRegistration(req.Email, req.Username, req.Password); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string][]validationIssue{
			"detail": {{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}},
		})
		return
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Password validation error: "+err.Error())
		return
	}
	u := &users.User{Email: req.Email, Username: req.Username, FullName: req.FullName, PasswordHash: hash}
	switch err := s.users.Create(u); {
	case errors.Is(err, fakeuserrepo.ErrUsernameExists):
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	case errors.Is(err, fakeuserrepo.ErrEmailExists):
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	case err != nil:
		writeDetail(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	s.writeAuthResponse(w, http.StatusCreated, u)
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, status int, u *users.User) {
	token, err := s.IssueToken(u.Username)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, status, backend.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: &users.User{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			FullName: u.FullName,
		},
	})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.meStatus
	s.mu.Unlock()

	if status != 0 {
		if status == http.StatusUnauthorized {
			unauthorized(w)
			return
		}
		writeDetail(w, status, http.StatusText(status))
		return
	}

	u, ok := s.authenticate(r)
	if !ok {
		unauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
