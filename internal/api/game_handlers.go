package api

import (
	"net/http"
	"time"

	"github.com/chesspost/chesspost/internal/engine"
	"github.com/chesspost/chesspost/internal/models"
)

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	activeOnly := r.URL.Query().Get("active") == "true"

	games, err := s.GameService.ListMyGames(r.Context(), u.ID, activeOnly)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handlePublicGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.GameService.ListPublicGames(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

type gameDetailResponse struct {
	Game        *models.Game `json:"game"`
	FEN         string       `json:"fen"`
	Moves       []string     `json:"moves"`
	WhiteToMove bool         `json:"white_to_move"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
}

func (s *Server) handlePlayerGames(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	games, err := s.GameService.ListPlayerGames(r.Context(), id, u.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleGameDetail(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	g, err := s.GameService.GetGame(r.Context(), id, u.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	pos, err := engine.Load(g.Movetext)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := gameDetailResponse{
		Game:        g,
		FEN:         pos.FEN(),
		Moves:       pos.MovesSAN(),
		WhiteToMove: pos.WhiteToMove(),
	}
	if g.Status.Active() {
		deadline := g.Deadline()
		resp.Deadline = &deadline
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitMove(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req struct {
		Move string `json:"move"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.GameService.SubmitMove(r.Context(), id, u.ID, req.Move)
	if err != nil {
		handleError(w, r, err)
		return
	}

	body := map[string]any{
		"successful": true,
		"move":       res.MoveSAN,
		"fen":        res.FEN,
		"status":     res.Record.Status,
		"to_move":    res.Record.ToMove,
	}
	if res.Outcome != nil {
		body["outcome"] = res.Outcome.Method
		body["winner"] = res.Record.Winner
	}
	writeJSON(w, http.StatusOK, body)
}
