package api

import (
	"net/http"
)

func (s *Server) handleListChat(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	msgs, err := s.ChatService.ListMessages(r.Context(), id, u.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handlePostChat(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	msgID, err := s.ChatService.PostMessage(r.Context(), id, u.ID, req.Message)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": msgID})
}
