package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/health", s.handleHealth)

	// Everything below requires a session.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/me", s.handleMe)
		r.Post("/settings", s.handleUpdateSettings)

		r.Get("/users/{id}", s.handleProfile)
		r.Get("/users/{id}/games", s.handlePlayerGames)

		r.Get("/games", s.handleMyGames)
		r.Get("/games/public", s.handlePublicGames)
		r.Get("/games/{id}", s.handleGameDetail)
		r.Post("/games/{id}/moves", s.handleSubmitMove)

		r.Get("/games/{id}/chat", s.handleListChat)
		r.Post("/games/{id}/chat", s.handlePostChat)

		r.Get("/requests", s.handleAvailableRequests)
		r.Get("/requests/mine", s.handleMyRequests)
		r.Post("/requests", s.handleCreateRequest)
		r.Post("/requests/{id}/accept", s.handleAcceptRequest)
		r.Post("/requests/{id}/delete", s.handleDeleteRequest)
	})

	return r
}
