package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	apperrors "github.com/chesspost/chesspost/internal/errors"
	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
)

// ChatService handles per-game chat
type ChatService interface {
	PostMessage(ctx context.Context, gameID, userID int64, message string) (int64, error)
	ListMessages(ctx context.Context, gameID, viewerID int64) ([]models.ChatMessage, error)
}

type chatService struct {
	chatRepo repository.ChatRepository
	gameRepo repository.GameRepository
}

// NewChatService creates a new ChatService
func NewChatService(chatRepo repository.ChatRepository, gameRepo repository.GameRepository) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		gameRepo: gameRepo,
	}
}

func (s *chatService) PostMessage(ctx context.Context, gameID, userID int64, message string) (int64, error) {
	log := logger.FromContext(ctx)

	message = strings.TrimSpace(message)
	if message == "" {
		return 0, apperrors.NewValidationError("message", "cannot be empty")
	}
	if len(message) > models.ChatMsgMaxLen {
		return 0, apperrors.NewValidationError("message", "too long")
	}

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	// Only the two players may write, even in public games.
	if !g.IsParticipant(userID) {
		return 0, apperrors.NewUnauthorizedError("only participants may chat in this game")
	}

	id, err := s.chatRepo.Insert(ctx, models.ChatMessage{
		GameID:  gameID,
		UserID:  userID,
		Message: message,
	})
	if err != nil {
		log.Error("failed to insert chat message: %v", err)
		return 0, apperrors.NewInternalError(err)
	}
	return id, nil
}

func (s *chatService) ListMessages(ctx context.Context, gameID, viewerID int64) ([]models.ChatMessage, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.Public && !g.IsParticipant(viewerID) {
		return nil, apperrors.NewNotFoundError("game", gameID)
	}

	msgs, err := s.chatRepo.ListForGame(ctx, gameID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return msgs, nil
}

func (s *chatService) loadGame(ctx context.Context, gameID int64) (*models.Game, error) {
	g, err := s.gameRepo.Get(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("game", gameID)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return g, nil
}
