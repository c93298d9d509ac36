package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
)

type requestRepository struct {
	db *sql.DB
}

// NewGameRequestRepository creates a new GameRequestRepository implementation
func NewGameRequestRepository(db *sql.DB) repository.GameRequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `r.id, r.user_id, r.opponent_id, r.turn_day_limit, r.min_rating, r.max_rating,
       r.color, r.public, r.created_at, u.username, u.rating`

func scanRequest(row interface{ Scan(...any) error }) (*models.GameRequest, error) {
	var req models.GameRequest
	err := row.Scan(&req.ID, &req.UserID, &req.OpponentID, &req.TurnDayLimit, &req.MinRating,
		&req.MaxRating, &req.Color, &req.Public, &req.CreatedAt, &req.Username, &req.Rating)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) Get(ctx context.Context, id int64) (*models.GameRequest, error) {
	log := logger.FromContext(ctx).WithPrefix("request_repo")
	log.Debug("getting game request: id=%d", id)

	req, err := scanRequest(r.db.QueryRowContext(ctx, `
SELECT `+requestColumns+`
FROM game_requests r
JOIN users u ON u.id = r.user_id
WHERE r.id = ?
`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("game request not found: id=%d", id)
		} else {
			log.Error("failed to get game request: %v", err)
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) Create(ctx context.Context, req models.GameRequest) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("request_repo")
	log.Debug("creating game request: user_id=%d, opponent_id=%d", req.UserID, req.OpponentID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO game_requests (user_id, opponent_id, turn_day_limit, min_rating, max_rating, color, public)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, req.UserID, req.OpponentID, req.TurnDayLimit, req.MinRating, req.MaxRating, req.Color, req.Public)
	if err != nil {
		log.Error("failed to create game request: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get request id: %v", err)
		return 0, err
	}
	log.Debug("game request created: id=%d", id)
	return id, nil
}

func (r *requestRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("request_repo")
	log.Debug("deleting game request: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM game_requests WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete game request: %v", err)
	}
	return err
}

func (r *requestRepository) ListAvailable(ctx context.Context, userID int64, rating int) ([]models.GameRequest, error) {
	log := logger.FromContext(ctx).WithPrefix("request_repo")
	log.Debug("listing available requests: user_id=%d, rating=%d", userID, rating)

	query := sqlBuilder.Select("r.id", "r.user_id", "r.opponent_id", "r.turn_day_limit",
		"r.min_rating", "r.max_rating", "r.color", "r.public", "r.created_at",
		"u.username", "u.rating").
		From("game_requests r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.NotEq{"r.user_id": userID}).
		Where(squirrel.Or{
			squirrel.Eq{"r.opponent_id": userID},
			squirrel.And{
				squirrel.Eq{"r.opponent_id": models.PublicOpponent},
				squirrel.LtOrEq{"r.min_rating": rating},
				squirrel.GtOrEq{"r.max_rating": rating},
			},
		}).
		OrderBy("r.created_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	return r.queryRequests(ctx, sqlStr, args...)
}

func (r *requestRepository) ListByUser(ctx context.Context, userID int64) ([]models.GameRequest, error) {
	log := logger.FromContext(ctx).WithPrefix("request_repo")
	log.Debug("listing requests by user: user_id=%d", userID)

	return r.queryRequests(ctx, `
SELECT `+requestColumns+`
FROM game_requests r
JOIN users u ON u.id = r.user_id
WHERE r.user_id = ?
ORDER BY r.created_at ASC
`, userID)
}

func (r *requestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]models.GameRequest, error) {
	log := logger.FromContext(ctx).WithPrefix("request_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list game requests: %v", err)
		return nil, err
	}
	defer rows.Close()

	var reqs []models.GameRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			log.Error("failed to scan request row: %v", err)
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	log.Debug("found %d game requests", len(reqs))
	return reqs, rows.Err()
}

// Accept atomically removes the request and creates the game it produced. If
// the request was already taken by a concurrent accept, repository.ErrRequestGone is
// returned and no game is created.
func (r *requestRepository) Accept(ctx context.Context, requestID int64, game models.Game) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("request_repo")
	log.Debug("accepting game request: id=%d", requestID)

	var gameID int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM game_requests WHERE id = ?`, requestID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrRequestGone
		}

		res, err = tx.ExecContext(ctx, `
INSERT INTO games (player_white_id, player_black_id, to_move, movetext, move_start_time, turn_day_limit, status, winner, public)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, game.PlayerWhiteID, game.PlayerBlackID, game.ToMove, game.Movetext, game.MoveStartTime,
			game.TurnDayLimit, game.Status, game.Winner, game.Public)
		if err != nil {
			return fmt.Errorf("create game for request %d: %w", requestID, err)
		}
		gameID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrRequestGone) {
			log.Error("failed to accept game request: %v", err)
		}
		return 0, err
	}
	log.Debug("game request accepted: request_id=%d, game_id=%d", requestID, gameID)
	return gameID, nil
}
