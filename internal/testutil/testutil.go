package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chesspost/chesspost/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SeedUser inserts a user row directly and returns its id.
func SeedUser(t *testing.T, database *db.DB, username string, rating int) int64 {
	t.Helper()
	res, err := database.ExecContext(context.Background(), `
INSERT INTO users (username, password_hash, email, rating, notifications)
VALUES (?, ?, ?, ?, 1)
`, username, "x", username+"@example.com", rating)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// SeedGame inserts a minimal active game row and returns its id.
func SeedGame(t *testing.T, database *db.DB, whiteID, blackID int64, turnDayLimit int) int64 {
	t.Helper()
	res, err := database.ExecContext(context.Background(), `
INSERT INTO games (player_white_id, player_black_id, to_move, movetext, move_start_time, turn_day_limit, status, winner, public)
VALUES (?, ?, ?, '', ?, ?, 'no_move', 0, 1)
`, whiteID, blackID, whiteID, time.Now().UTC().Truncate(time.Second), turnDayLimit)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
