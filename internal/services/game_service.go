package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/chesspost/chesspost/internal/errors"
	"github.com/chesspost/chesspost/internal/game"
	"github.com/chesspost/chesspost/internal/jobs"
	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
)

// GameService handles game-related business logic
type GameService interface {
	GetGame(ctx context.Context, id int64, viewerID int64) (*models.Game, error)
	ListMyGames(ctx context.Context, userID int64, activeOnly bool) ([]models.Game, error)
	ListPublicGames(ctx context.Context) ([]models.Game, error)
	ListPlayerGames(ctx context.Context, playerID, viewerID int64) ([]models.Game, error)
	SubmitMove(ctx context.Context, gameID, moverID int64, moveText string) (*game.MoveResult, error)
	SweepTimeouts(ctx context.Context) (int, error)
}

type gameService struct {
	gameRepo repository.GameRepository
	userRepo repository.UserRepository
	manager  *game.Manager
	jobQueue jobs.JobQueue
}

// NewGameService creates a new GameService
func NewGameService(gameRepo repository.GameRepository, userRepo repository.UserRepository, manager *game.Manager, jobQueue jobs.JobQueue) GameService {
	return &gameService{
		gameRepo: gameRepo,
		userRepo: userRepo,
		manager:  manager,
		jobQueue: jobQueue,
	}
}

func (s *gameService) GetGame(ctx context.Context, id int64, viewerID int64) (*models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting game: id=%d, viewer_id=%d", id, viewerID)

	g, err := s.gameRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("game", id)
		}
		log.Error("failed to get game: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	// Private games are visible to participants only.
	if !g.Public && !g.IsParticipant(viewerID) {
		return nil, apperrors.NewNotFoundError("game", id)
	}
	return g, nil
}

func (s *gameService) ListMyGames(ctx context.Context, userID int64, activeOnly bool) ([]models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing games for user: user_id=%d, active_only=%v", userID, activeOnly)

	filter := models.GameFilter{ParticipantID: userID}
	if activeOnly {
		filter.Statuses = models.ActiveStatuses
	}
	games, err := s.gameRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return games, nil
}

func (s *gameService) ListPublicGames(ctx context.Context) ([]models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing public games")

	games, err := s.gameRepo.List(ctx, models.GameFilter{
		PublicOnly: true,
		Statuses:   models.ActiveStatuses,
	})
	if err != nil {
		log.Error("failed to list public games: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return games, nil
}

// ListPlayerGames returns another player's completed games, limited to what
// the viewer may see: public games plus any the viewer played in themselves.
func (s *gameService) ListPlayerGames(ctx context.Context, playerID, viewerID int64) ([]models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing player history: player_id=%d, viewer_id=%d", playerID, viewerID)

	if _, err := s.userRepo.Get(ctx, playerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user", playerID)
		}
		log.Error("failed to get user: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	games, err := s.gameRepo.List(ctx, models.GameFilter{
		ParticipantID: playerID,
		Statuses:      models.TerminalStatuses,
	})
	if err != nil {
		log.Error("failed to list player games: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	visible := games[:0]
	for _, g := range games {
		if g.Public || g.IsParticipant(viewerID) {
			visible = append(visible, g)
		}
	}
	return visible, nil
}

func (s *gameService) SubmitMove(ctx context.Context, gameID, moverID int64, moveText string) (*game.MoveResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting move: game_id=%d, mover_id=%d, move=%q", gameID, moverID, moveText)

	g, err := s.gameRepo.Get(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("game", gameID)
		}
		log.Error("failed to get game: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	res, err := s.manager.SubmitMove(g, moverID, moveText)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeMalformedHistory) {
			log.Error("stored history failed to replay: game_id=%d transcript=%q err=%v", g.ID, g.Movetext, err)
		}
		return nil, err
	}

	// Conditional write: the transition only lands if the game is still
	// active and the turn still belongs to the mover. A concurrent timeout
	// sweep or move wins the race otherwise.
	applied, err := s.gameRepo.ApplyTransition(ctx, res.Record, g.ToMove, models.ActiveStatuses)
	if err != nil {
		log.Error("failed to persist move: game_id=%d err=%v", g.ID, err)
		return nil, apperrors.NewInternalError(err)
	}
	if !applied {
		return nil, apperrors.NewStaleTransitionError(g.ID)
	}

	s.notifyAfterMove(ctx, moverID, res)
	return res, nil
}

func (s *gameService) SweepTimeouts(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("sweep")

	active, err := s.gameRepo.List(ctx, models.GameFilter{Statuses: models.ActiveStatuses})
	if err != nil {
		log.Error("failed to list active games: %v", err)
		return 0, apperrors.NewInternalError(err)
	}

	records := make([]*models.Game, len(active))
	for i := range active {
		records[i] = &active[i]
	}

	swept := 0
	for _, res := range s.manager.SweepTimeouts(records, time.Now()) {
		// One record's failure must not stop the rest of the batch.
		applied, err := s.gameRepo.ApplyTransition(ctx, res.Record, res.Loser, models.ActiveStatuses)
		if err != nil {
			log.Error("failed to persist timeout: game_id=%d err=%v", res.GameID, err)
			continue
		}
		if !applied {
			log.Debug("timeout lost the race, skipping: game_id=%d", res.GameID)
			continue
		}
		swept++
		log.Info("game timed out: game_id=%d winner=%d", res.GameID, res.Winner)
		s.notifyTimeout(ctx, res)
	}
	return swept, nil
}

func (s *gameService) notifyAfterMove(ctx context.Context, moverID int64, res *game.MoveResult) {
	g := res.Record
	opponentID := g.Opponent(moverID)

	var subject, body string
	if res.Outcome == nil {
		subject = fmt.Sprintf("Your move in game #%d", g.ID)
		body = fmt.Sprintf("Your opponent played %s. You have %d day(s) to respond.", res.MoveSAN, g.TurnDayLimit)
	} else {
		subject = fmt.Sprintf("Game #%d is over: %s", g.ID, res.Outcome.Method)
		body = fmt.Sprintf("The game ended after %s (%s).", res.MoveSAN, res.Outcome.Method)
	}
	s.notifyUser(ctx, opponentID, subject, body)
}

func (s *gameService) notifyTimeout(ctx context.Context, res game.TimeoutResult) {
	s.notifyUser(ctx, res.Winner,
		fmt.Sprintf("Game #%d won on time", res.GameID),
		"Your opponent ran out of time. You win.")
	s.notifyUser(ctx, res.Loser,
		fmt.Sprintf("Game #%d lost on time", res.GameID),
		"Your turn clock ran out and the game was forfeited.")
}

// notifyUser enqueues a notification, best effort. Failures are logged and
// never affect the state transition that triggered them.
func (s *gameService) notifyUser(ctx context.Context, userID int64, subject, body string) {
	log := logger.FromContext(ctx)

	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		log.Warn("cannot notify user %d: %v", userID, err)
		return
	}
	if !u.Notifications || u.Email == "" {
		return
	}
	if err := s.jobQueue.EnqueueNotification(u.Email, subject, body); err != nil {
		log.Warn("failed to enqueue notification for user %d: %v", userID, err)
	}
}
