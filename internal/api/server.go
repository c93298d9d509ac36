package api

import (
	"github.com/chesspost/chesspost/internal/services"
)

// Server wires HTTP handlers to the service layer.
type Server struct {
	UserService        services.UserService
	GameService        services.GameService
	MatchmakingService services.MatchmakingService
	ChatService        services.ChatService
}
