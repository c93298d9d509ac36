package game_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chesspost/chesspost/internal/engine"
	"github.com/chesspost/chesspost/internal/errors"
	"github.com/chesspost/chesspost/internal/game"
	"github.com/chesspost/chesspost/internal/models"
)

const (
	whiteID int64 = 1
	blackID int64 = 2
)

func newTestGame() *models.Game {
	return &models.Game{
		ID:              7,
		PlayerWhiteID:   whiteID,
		PlayerBlackID:   blackID,
		ToMove:          whiteID,
		Movetext:        "",
		MoveStartTime:   time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		TurnDayLimit:    3,
		Status:          models.StatusNoMove,
		Winner:          models.NoWinner,
		CreatedAt:       time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		PlayerWhiteName: "alice",
		PlayerBlackName: "bob",
	}
}

// playMoves submits each move as the player currently holding the turn.
func playMoves(t *testing.T, mgr *game.Manager, g *models.Game, moves ...string) *game.MoveResult {
	t.Helper()
	var res *game.MoveResult
	for _, mv := range moves {
		var err error
		res, err = mgr.SubmitMove(g, g.ToMove, mv)
		require.NoError(t, err, "move %q", mv)
		g = res.Record
	}
	return res
}

func TestSubmitMove_OpeningMove(t *testing.T) {
	mgr := game.NewManager()
	g := newTestGame()

	res, err := mgr.SubmitMove(g, whiteID, "e2e4")
	require.NoError(t, err)

	assert.Equal(t, blackID, res.Record.ToMove)
	assert.Equal(t, models.StatusInProgress, res.Record.Status)
	assert.Equal(t, models.NoWinner, res.Record.Winner)
	assert.Contains(t, res.Record.Movetext, "1. e2e4")
	assert.Contains(t, res.Record.Movetext, `[White "alice"]`)
	assert.Equal(t, "e4", res.MoveSAN)
	assert.Nil(t, res.Outcome)
	assert.True(t, res.Record.MoveStartTime.After(g.MoveStartTime))

	// The input record is never mutated.
	assert.Equal(t, whiteID, g.ToMove)
	assert.Equal(t, models.StatusNoMove, g.Status)
	assert.Empty(t, g.Movetext)
}

func TestSubmitMove_GameNotActive(t *testing.T) {
	mgr := game.NewManager()

	for _, status := range []models.GameStatus{
		models.StatusCheckmate, models.StatusStalemate, models.StatusDraw, models.StatusTimeout,
	} {
		g := newTestGame()
		g.Status = status

		_, err := mgr.SubmitMove(g, whiteID, "e2e4")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeGameNotActive), "status %s", status)
	}
}

func TestSubmitMove_NotYourTurn(t *testing.T) {
	mgr := game.NewManager()
	g := newTestGame()

	// The opponent out of turn, and a complete outsider.
	for _, mover := range []int64{blackID, 99} {
		before := *g
		_, err := mgr.SubmitMove(g, mover, "e2e4")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotYourTurn), "mover %d", mover)
		assert.Equal(t, before, *g)
	}
}

func TestSubmitMove_IllegalMove(t *testing.T) {
	mgr := game.NewManager()
	g := newTestGame()
	before := *g

	for _, mv := range []string{"e2e5", "e7e5", "garbage", ""} {
		_, err := mgr.SubmitMove(g, whiteID, mv)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeIllegalMove), "move %q", mv)
	}
	assert.Equal(t, before, *g)
}

func TestSubmitMove_MalformedHistory(t *testing.T) {
	mgr := game.NewManager()
	g := newTestGame()
	g.Movetext = "1. e2e4 zzzz"
	g.Status = models.StatusInProgress

	_, err := mgr.SubmitMove(g, whiteID, "g1f3")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedHistory))
}

func TestSubmitMove_CheckmateSetsWinner(t *testing.T) {
	mgr := game.NewManager()

	res := playMoves(t, mgr, newTestGame(),
		"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7")

	assert.Equal(t, models.StatusCheckmate, res.Record.Status)
	assert.Equal(t, whiteID, res.Record.Winner)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, engine.KindCheckmate, res.Outcome.Kind)
	assert.Contains(t, res.Record.Movetext, "1-0")
}

func TestSubmitMove_FoolsMateBlackWins(t *testing.T) {
	mgr := game.NewManager()

	res := playMoves(t, mgr, newTestGame(), "f2f3", "e7e5", "g2g4", "d8h4")

	assert.Equal(t, models.StatusCheckmate, res.Record.Status)
	assert.Equal(t, blackID, res.Record.Winner)
}

func TestSubmitMove_StalemateUsesDrawSentinel(t *testing.T) {
	mgr := game.NewManager()

	res := playMoves(t, mgr, newTestGame(),
		"e2e3", "a7a5", "d1h5", "a8a6", "h5a5", "h7h5", "a5c7", "a6h6",
		"h2h4", "f7f6", "c7d7", "e8f7", "d7b7", "d8d3", "b7b8", "d3h7",
		"b8c8", "f7g6", "c8e6")

	assert.Equal(t, models.StatusStalemate, res.Record.Status)
	assert.Equal(t, models.DrawWinner, res.Record.Winner)
}

func TestSubmitMove_TruncatesMoveStartTime(t *testing.T) {
	at := time.Date(2024, 3, 17, 9, 30, 45, 987654321, time.UTC)
	mgr := game.NewManager(game.WithClock(func() time.Time { return at }))

	res, err := mgr.SubmitMove(newTestGame(), whiteID, "e2e4")
	require.NoError(t, err)
	assert.Equal(t, at.Truncate(time.Second), res.Record.MoveStartTime)
}

func TestSweepTimeouts_ExpiredRecord(t *testing.T) {
	mgr := game.NewManager()
	g := newTestGame()
	g.Status = models.StatusInProgress
	g.TurnDayLimit = 3
	now := g.MoveStartTime.Add(4 * 24 * time.Hour)
	before := *g

	results := mgr.SweepTimeouts([]*models.Game{g}, now)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, g.ID, res.GameID)
	assert.Equal(t, blackID, res.Winner)
	assert.Equal(t, whiteID, res.Loser)
	assert.Equal(t, models.StatusTimeout, res.Record.Status)
	assert.Equal(t, blackID, res.Record.Winner)
	assert.Equal(t, g.Movetext, res.Record.Movetext)
	assert.Equal(t, before, *g)
}

func TestSweepTimeouts_NotExpired(t *testing.T) {
	mgr := game.NewManager()
	g := newTestGame()
	g.Status = models.StatusInProgress
	now := g.MoveStartTime.Add(24 * time.Hour)

	results := mgr.SweepTimeouts([]*models.Game{g}, now)
	assert.Empty(t, results)
}

func TestSweepTimeouts_Idempotent(t *testing.T) {
	mgr := game.NewManager()
	g := newTestGame()
	g.Status = models.StatusInProgress
	now := g.MoveStartTime.Add(4 * 24 * time.Hour)

	first := mgr.SweepTimeouts([]*models.Game{g}, now)
	require.Len(t, first, 1)

	second := mgr.SweepTimeouts([]*models.Game{first[0].Record}, now.Add(time.Hour))
	assert.Empty(t, second)
}

func TestSweepTimeouts_MixedBatch(t *testing.T) {
	mgr := game.NewManager()

	expired := newTestGame()
	expired.ID = 1
	expired.Status = models.StatusInProgress

	fresh := newTestGame()
	fresh.ID = 2
	fresh.MoveStartTime = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	done := newTestGame()
	done.ID = 3
	done.Status = models.StatusCheckmate
	done.Winner = whiteID

	now := time.Date(2024, 3, 14, 12, 0, 1, 0, time.UTC)
	results := mgr.SweepTimeouts([]*models.Game{expired, fresh, done}, now)

	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].GameID)
}
