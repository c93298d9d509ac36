package repository

import (
	"context"
	"errors"

	"github.com/chesspost/chesspost/internal/models"
)

// ErrRequestGone reports an accept that raced with a delete or another accept.
var ErrRequestGone = errors.New("game request no longer exists")

// GameRepository handles game data access
type GameRepository interface {
	Get(ctx context.Context, id int64) (*models.Game, error)
	List(ctx context.Context, filter models.GameFilter) ([]models.Game, error)
	Create(ctx context.Context, game models.Game) (int64, error)
	// ApplyTransition commits a mutated record with a conditional write: the
	// update only lands if the row's status is still one of expected and the
	// turn still belongs to expectedToMove, the values the transition was
	// computed against. The returned bool reports whether the write was
	// applied; false means the record changed concurrently and the transition
	// must be discarded.
	ApplyTransition(ctx context.Context, game *models.Game, expectedToMove int64, expected []models.GameStatus) (bool, error)
}

// UserRepository handles user data access
type UserRepository interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user models.User) (int64, error)
	UpdateSettings(ctx context.Context, id int64, email string, notifications bool) error
}

// GameRequestRepository handles open-challenge data access
type GameRequestRepository interface {
	Get(ctx context.Context, id int64) (*models.GameRequest, error)
	Create(ctx context.Context, req models.GameRequest) (int64, error)
	Delete(ctx context.Context, id int64) error
	// ListAvailable returns requests the given user may accept: direct
	// challenges addressed to them, plus open requests whose rating window
	// admits them, excluding their own.
	ListAvailable(ctx context.Context, userID int64, rating int) ([]models.GameRequest, error)
	ListByUser(ctx context.Context, userID int64) ([]models.GameRequest, error)
	// Accept atomically deletes the request and creates the game it produced.
	Accept(ctx context.Context, requestID int64, game models.Game) (int64, error)
}

// ChatRepository handles per-game chat data access
type ChatRepository interface {
	Insert(ctx context.Context, msg models.ChatMessage) (int64, error)
	ListForGame(ctx context.Context, gameID int64) ([]models.ChatMessage, error)
}
