package api

import (
	"net/http"

	"github.com/chesspost/chesspost/internal/models"
)

func (s *Server) handleAvailableRequests(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())

	reqs, err := s.MatchmakingService.ListAvailable(r.Context(), u.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

func (s *Server) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())

	reqs, err := s.MatchmakingService.ListMine(r.Context(), u.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())

	var req struct {
		OpponentID   int64  `json:"opponent_id"`
		TurnDayLimit int    `json:"turn_day_limit"`
		MinRating    int    `json:"min_rating"`
		MaxRating    int    `json:"max_rating"`
		Color        string `json:"color"`
		Public       bool   `json:"public"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.MinRating == 0 {
		req.MinRating = models.RatingMin
	}
	if req.MaxRating == 0 {
		req.MaxRating = models.RatingMax
	}

	id, err := s.MatchmakingService.CreateRequest(r.Context(), models.GameRequest{
		UserID:       u.ID,
		OpponentID:   req.OpponentID,
		TurnDayLimit: req.TurnDayLimit,
		MinRating:    req.MinRating,
		MaxRating:    req.MaxRating,
		Color:        req.Color,
		Public:       req.Public,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	gameID, err := s.MatchmakingService.AcceptRequest(r.Context(), id, u.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"game_id": gameID})
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.MatchmakingService.DeleteRequest(r.Context(), id, u.ID); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
