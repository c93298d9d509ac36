package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	apperrors "github.com/chesspost/chesspost/internal/errors"
	"github.com/chesspost/chesspost/internal/jobs"
	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
)

// MatchmakingService handles open challenges and turns accepted ones into games
type MatchmakingService interface {
	CreateRequest(ctx context.Context, req models.GameRequest) (int64, error)
	ListAvailable(ctx context.Context, userID int64) ([]models.GameRequest, error)
	ListMine(ctx context.Context, userID int64) ([]models.GameRequest, error)
	DeleteRequest(ctx context.Context, requestID, userID int64) error
	AcceptRequest(ctx context.Context, requestID, accepterID int64) (int64, error)
}

type matchmakingService struct {
	requestRepo repository.GameRequestRepository
	userRepo    repository.UserRepository
	jobQueue    jobs.JobQueue
}

// NewMatchmakingService creates a new MatchmakingService
func NewMatchmakingService(requestRepo repository.GameRequestRepository, userRepo repository.UserRepository, jobQueue jobs.JobQueue) MatchmakingService {
	return &matchmakingService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		jobQueue:    jobQueue,
	}
}

func (s *matchmakingService) CreateRequest(ctx context.Context, req models.GameRequest) (int64, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating game request: user_id=%d opponent_id=%d", req.UserID, req.OpponentID)

	if req.TurnDayLimit < models.TurnDayLimitMin || req.TurnDayLimit > models.TurnDayLimitMax {
		return 0, apperrors.NewValidationError("turn_day_limit",
			fmt.Sprintf("must be between %d and %d days", models.TurnDayLimitMin, models.TurnDayLimitMax))
	}
	switch req.Color {
	case models.ColorWhite, models.ColorBlack, models.ColorRandom:
	default:
		return 0, apperrors.NewValidationError("color", "must be white, black, or random")
	}
	if req.MinRating > req.MaxRating {
		return 0, apperrors.NewValidationError("min_rating", "cannot exceed max_rating")
	}
	if req.OpponentID == req.UserID {
		return 0, apperrors.NewValidationError("opponent_id", "cannot challenge yourself")
	}
	if req.OpponentID != models.PublicOpponent {
		if _, err := s.userRepo.Get(ctx, req.OpponentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, apperrors.NewNotFoundError("user", req.OpponentID)
			}
			return 0, apperrors.NewInternalError(err)
		}
	}

	id, err := s.requestRepo.Create(ctx, req)
	if err != nil {
		log.Error("failed to create game request: %v", err)
		return 0, apperrors.NewInternalError(err)
	}
	log.Info("game request created: id=%d", id)
	return id, nil
}

func (s *matchmakingService) ListAvailable(ctx context.Context, userID int64) ([]models.GameRequest, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user", userID)
		}
		return nil, apperrors.NewInternalError(err)
	}

	reqs, err := s.requestRepo.ListAvailable(ctx, userID, u.Rating)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return reqs, nil
}

func (s *matchmakingService) ListMine(ctx context.Context, userID int64) ([]models.GameRequest, error) {
	reqs, err := s.requestRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return reqs, nil
}

func (s *matchmakingService) DeleteRequest(ctx context.Context, requestID, userID int64) error {
	req, err := s.requestRepo.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFoundError("game request", requestID)
		}
		return apperrors.NewInternalError(err)
	}
	if req.UserID != userID {
		return apperrors.NewUnauthorizedError("only the requester may withdraw a request")
	}
	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *matchmakingService) AcceptRequest(ctx context.Context, requestID, accepterID int64) (int64, error) {
	log := logger.FromContext(ctx)
	log.Debug("accepting game request: id=%d accepter_id=%d", requestID, accepterID)

	req, err := s.requestRepo.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.NewNotFoundError("game request", requestID)
		}
		return 0, apperrors.NewInternalError(err)
	}
	if req.UserID == accepterID {
		return 0, apperrors.NewBadRequestError("cannot accept your own request")
	}

	accepter, err := s.userRepo.Get(ctx, accepterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.NewNotFoundError("user", accepterID)
		}
		return 0, apperrors.NewInternalError(err)
	}

	if req.OpponentID != models.PublicOpponent {
		if req.OpponentID != accepterID {
			return 0, apperrors.NewUnauthorizedError("this challenge is addressed to another player")
		}
	} else if accepter.Rating < req.MinRating || accepter.Rating > req.MaxRating {
		return 0, apperrors.NewBadRequestError("your rating is outside the requested range")
	}

	whiteID, blackID := assignColors(req, accepterID)
	g := models.Game{
		PlayerWhiteID: whiteID,
		PlayerBlackID: blackID,
		ToMove:        whiteID,
		Movetext:      "",
		MoveStartTime: time.Now().UTC().Truncate(time.Second),
		TurnDayLimit:  req.TurnDayLimit,
		Status:        models.StatusNoMove,
		Winner:        models.NoWinner,
		Public:        req.Public,
	}

	gameID, err := s.requestRepo.Accept(ctx, requestID, g)
	if err != nil {
		if errors.Is(err, repository.ErrRequestGone) {
			return 0, apperrors.NewNotFoundError("game request", requestID)
		}
		log.Error("failed to accept game request: %v", err)
		return 0, apperrors.NewInternalError(err)
	}
	log.Info("game created from request: request_id=%d game_id=%d white=%d black=%d", requestID, gameID, whiteID, blackID)

	s.notifyRequester(ctx, req, accepter, gameID)
	return gameID, nil
}

// assignColors resolves the requester's color choice into white/black player
// ids. A random choice uses crypto/rand so neither side can predict it.
func assignColors(req *models.GameRequest, accepterID int64) (whiteID, blackID int64) {
	color := req.Color
	if color == models.ColorRandom {
		color = models.ColorWhite
		if n, err := rand.Int(rand.Reader, big.NewInt(2)); err == nil && n.Int64() == 1 {
			color = models.ColorBlack
		}
	}
	if color == models.ColorWhite {
		return req.UserID, accepterID
	}
	return accepterID, req.UserID
}

func (s *matchmakingService) notifyRequester(ctx context.Context, req *models.GameRequest, accepter *models.User, gameID int64) {
	log := logger.FromContext(ctx)

	u, err := s.userRepo.Get(ctx, req.UserID)
	if err != nil {
		log.Warn("cannot notify requester %d: %v", req.UserID, err)
		return
	}
	if !u.Notifications || u.Email == "" {
		return
	}
	subject := fmt.Sprintf("Game #%d has started", gameID)
	body := fmt.Sprintf("%s accepted your challenge. You have %d day(s) per move.", accepter.Username, req.TurnDayLimit)
	if err := s.jobQueue.EnqueueNotification(u.Email, subject, body); err != nil {
		log.Warn("failed to enqueue notification for user %d: %v", req.UserID, err)
	}
}
