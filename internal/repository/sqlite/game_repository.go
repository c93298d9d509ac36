package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
)

type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository implementation
func NewGameRepository(db *sql.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

var gameColumns = []string{
	"g.id", "g.player_white_id", "g.player_black_id", "g.to_move", "g.movetext",
	"g.move_start_time", "g.turn_day_limit", "g.status", "g.winner", "g.public",
	"g.created_at", "wu.username", "bu.username",
}

func scanGame(row interface{ Scan(...any) error }) (*models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.PlayerWhiteID, &g.PlayerBlackID, &g.ToMove, &g.Movetext,
		&g.MoveStartTime, &g.TurnDayLimit, &g.Status, &g.Winner, &g.Public,
		&g.CreatedAt, &g.PlayerWhiteName, &g.PlayerBlackName)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gameRepository) Get(ctx context.Context, id int64) (*models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("getting game: id=%d", id)

	g, err := scanGame(r.db.QueryRowContext(ctx, `
SELECT g.id, g.player_white_id, g.player_black_id, g.to_move, g.movetext,
       g.move_start_time, g.turn_day_limit, g.status, g.winner, g.public,
       g.created_at, wu.username, bu.username
FROM games g
JOIN users wu ON wu.id = g.player_white_id
JOIN users bu ON bu.id = g.player_black_id
WHERE g.id = ?
`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("game not found: id=%d", id)
		} else {
			log.Error("failed to get game: %v", err)
		}
		return nil, err
	}
	return g, nil
}

func (r *gameRepository) List(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("listing games: participant_id=%d, to_move_id=%d, statuses=%v, public=%v",
		filter.ParticipantID, filter.ToMoveID, filter.Statuses, filter.PublicOnly)

	query := sqlBuilder.Select(gameColumns...).
		From("games g").
		Join("users wu ON wu.id = g.player_white_id").
		Join("users bu ON bu.id = g.player_black_id")

	// Dynamic WHERE clauses
	if filter.ParticipantID != 0 {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"g.player_white_id": filter.ParticipantID},
			squirrel.Eq{"g.player_black_id": filter.ParticipantID},
		})
	}
	if filter.ToMoveID != 0 {
		query = query.Where(squirrel.Eq{"g.to_move": filter.ToMoveID})
	}
	if len(filter.Statuses) > 0 {
		query = query.Where(squirrel.Eq{"g.status": filter.Statuses})
	}
	if filter.PublicOnly {
		query = query.Where(squirrel.Eq{"g.public": true})
	}

	query = query.OrderBy("g.move_start_time ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		games = append(games, *g)
	}
	log.Debug("found %d games", len(games))
	return games, rows.Err()
}

func (r *gameRepository) Create(ctx context.Context, g models.Game) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("creating game: white=%d, black=%d, limit=%dd", g.PlayerWhiteID, g.PlayerBlackID, g.TurnDayLimit)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO games (player_white_id, player_black_id, to_move, movetext, move_start_time, turn_day_limit, status, winner, public)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, g.PlayerWhiteID, g.PlayerBlackID, g.ToMove, g.Movetext, g.MoveStartTime, g.TurnDayLimit, g.Status, g.Winner, g.Public)
	if err != nil {
		log.Error("failed to create game: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get game id: %v", err)
		return 0, err
	}
	log.Debug("game created: id=%d", id)
	return id, nil
}

func (r *gameRepository) ApplyTransition(ctx context.Context, g *models.Game, expectedToMove int64, expected []models.GameStatus) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("applying transition: game_id=%d, status=%s, expected=%v, expected_to_move=%d",
		g.ID, g.Status, expected, expectedToMove)

	// Guarding on to_move as well as status means a transition computed
	// against a snapshot where the turn has since passed cannot land, even
	// when the game is still active.
	sqlStr, args, err := sqlBuilder.Update("games").
		Set("to_move", g.ToMove).
		Set("movetext", g.Movetext).
		Set("move_start_time", g.MoveStartTime).
		Set("status", g.Status).
		Set("winner", g.Winner).
		Where(squirrel.Eq{"id": g.ID, "status": expected, "to_move": expectedToMove}).
		ToSql()
	if err != nil {
		log.Error("failed to build transition update: %v", err)
		return false, err
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to apply transition: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read rows affected: %v", err)
		return false, err
	}
	if n == 0 {
		log.Warn("stale transition discarded: game_id=%d", g.ID)
		return false, nil
	}
	return true, nil
}
