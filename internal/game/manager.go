// Package game implements the transition manager: it decides how a persisted
// game record changes in response to a submitted move or an expired turn
// clock. It never touches storage itself; callers persist the returned record
// with a conditional write.
package game

import (
	"fmt"
	"time"

	"github.com/chesspost/chesspost/internal/engine"
	"github.com/chesspost/chesspost/internal/errors"
	"github.com/chesspost/chesspost/internal/models"
)

// Manager computes game-record transitions.
type Manager struct {
	now func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager using the wall clock.
func NewManager(opts ...Option) *Manager {
	m := &Manager{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MoveResult describes one accepted move. Record is a mutated copy of the
// input; the caller commits it and uses the remaining fields to notify the
// next player.
type MoveResult struct {
	Record  *models.Game
	MoveSAN string
	FEN     string
	Outcome *engine.Outcome
}

// TimeoutResult describes one expired game. Winner is the player who was
// waiting; Loser is the player who let the turn clock run out.
type TimeoutResult struct {
	GameID int64
	Winner int64
	Loser  int64
	Record *models.Game
}

// SubmitMove validates and applies one move. Preconditions are checked in
// order and the first failure wins: the game must still be active, then the
// mover must hold the turn. A mover who is not a participant at all can never
// equal to_move, so the turn check also rejects outsiders. On any failure the
// input record is left untouched.
func (m *Manager) SubmitMove(g *models.Game, moverID int64, moveText string) (*MoveResult, error) {
	if !g.Status.Active() {
		return nil, errors.NewGameNotActiveError(g.ID)
	}
	if moverID != g.ToMove {
		return nil, errors.NewNotYourTurnError(g.ID, moverID)
	}

	pos, err := engine.Load(g.Movetext)
	if err != nil {
		return nil, err
	}
	pos.FillHeaders(headersFor(g))

	ok, next := pos.Apply(moveText)
	if !ok {
		return nil, errors.NewIllegalMoveError(moveText)
	}

	updated := *g
	updated.Movetext = next.Serialize()
	updated.MoveStartTime = m.now().UTC().Truncate(time.Second)
	updated.ToMove = g.Opponent(g.ToMove)

	outcome := next.Outcome()
	switch {
	case outcome == nil:
		updated.Status = models.StatusInProgress
		updated.Winner = models.NoWinner
	case outcome.Kind == engine.KindCheckmate:
		updated.Status = models.StatusCheckmate
		if outcome.Winner == engine.WinnerWhite {
			updated.Winner = g.PlayerWhiteID
		} else {
			updated.Winner = g.PlayerBlackID
		}
	case outcome.Kind == engine.KindStalemate:
		updated.Status = models.StatusStalemate
		updated.Winner = models.DrawWinner
	default:
		updated.Status = models.StatusDraw
		updated.Winner = models.DrawWinner
	}

	san := next.MovesSAN()
	return &MoveResult{
		Record:  &updated,
		MoveSAN: san[len(san)-1],
		FEN:     next.FEN(),
		Outcome: outcome,
	}, nil
}

// SweepTimeouts scans the given records against now and produces one result
// per expired active game: status becomes timeout and the player who was
// waiting wins. Records that are terminal or still within their turn clock
// are left untouched and excluded, which makes a repeated sweep over
// already-updated records a no-op. Each record is judged independently.
func (m *Manager) SweepTimeouts(records []*models.Game, now time.Time) []TimeoutResult {
	var expired []TimeoutResult
	for _, g := range records {
		if !g.Status.Active() || !now.After(g.Deadline()) {
			continue
		}
		updated := *g
		updated.Status = models.StatusTimeout
		updated.Winner = g.Opponent(g.ToMove)
		updated.MoveStartTime = now.UTC().Truncate(time.Second)
		expired = append(expired, TimeoutResult{
			GameID: g.ID,
			Winner: updated.Winner,
			Loser:  g.ToMove,
			Record: &updated,
		})
	}
	return expired
}

func headersFor(g *models.Game) engine.Headers {
	return engine.Headers{
		Event: fmt.Sprintf("Correspondence game #%d", g.ID),
		Site:  "chesspost",
		Date:  g.CreatedAt.UTC().Format("2006.01.02"),
		Round: "-",
		White: g.PlayerWhiteName,
		Black: g.PlayerBlackName,
	}
}
