package api

import (
	"net/http"
	"time"

	"github.com/chesspost/chesspost/internal/logger"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username      string `json:"username"`
		Password      string `json:"password"`
		Email         string `json:"email"`
		Rating        int    `json:"rating"`
		Notifications bool   `json:"notifications"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	u, err := s.UserService.Register(r.Context(), req.Username, req.Password, req.Email, req.Rating, req.Notifications)
	if err != nil {
		handleError(w, r, err)
		return
	}

	setSessionCookie(w, u.ID)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	u, err := s.UserService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("user logged in: id=%d username=%s", u.ID, u.Username)
	setSessionCookie(w, u.ID)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())

	var req struct {
		Email         string `json:"email"`
		Notifications bool   `json:"notifications"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.UserService.UpdateSettings(r.Context(), u.ID, req.Email, req.Notifications)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// profileResponse is the public view of a user: no email, no opt-in flags.
type profileResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	u, err := s.UserService.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Rating:    u.Rating,
		CreatedAt: u.CreatedAt,
	})
}
