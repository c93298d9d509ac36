package models

import "time"

// GameStatus is the closed set of per-game states. Values are always passed to
// the database as bound parameters, never interpolated into query text.
type GameStatus string

const (
	StatusNoMove     GameStatus = "no_move"
	StatusInProgress GameStatus = "in_progress"
	StatusCheckmate  GameStatus = "checkmate"
	StatusStalemate  GameStatus = "stalemate"
	StatusDraw       GameStatus = "draw"
	StatusTimeout    GameStatus = "timeout"
)

// ActiveStatuses are the states a game can still be moved in. Used as the
// expected pre-state set for conditional transition writes.
var ActiveStatuses = []GameStatus{StatusNoMove, StatusInProgress}

// TerminalStatuses are the absorbing states, in which a game shows up in
// players' completed history.
var TerminalStatuses = []GameStatus{StatusCheckmate, StatusStalemate, StatusDraw, StatusTimeout}

// Active reports whether moves may still be applied.
func (s GameStatus) Active() bool {
	return s == StatusNoMove || s == StatusInProgress
}

// Terminal reports whether the game has reached an absorbing state.
func (s GameStatus) Terminal() bool {
	switch s {
	case StatusCheckmate, StatusStalemate, StatusDraw, StatusTimeout:
		return true
	}
	return false
}

// Winner sentinels. A terminal game always has Winner set to a player id or
// DrawWinner; NoWinner only appears while the game is ongoing.
const (
	NoWinner   int64 = 0
	DrawWinner int64 = -1
)

// Game is one persisted correspondence game.
type Game struct {
	ID            int64      `json:"id"`
	PlayerWhiteID int64      `json:"player_white_id"`
	PlayerBlackID int64      `json:"player_black_id"`
	ToMove        int64      `json:"to_move"`
	Movetext      string     `json:"movetext"`
	MoveStartTime time.Time  `json:"move_start_time"`
	TurnDayLimit  int        `json:"turn_day_limit"`
	Status        GameStatus `json:"status"`
	Winner        int64      `json:"winner"`
	Public        bool       `json:"public"`
	CreatedAt     time.Time  `json:"created_at"`

	// Joined from users for display and transcript headers; not columns of games.
	PlayerWhiteName string `json:"player_white_name,omitempty"`
	PlayerBlackName string `json:"player_black_name,omitempty"`
}

// GameFilter selects games for listing. Zero fields are ignored.
type GameFilter struct {
	ParticipantID int64 // games where the user plays either color
	ToMoveID      int64
	Statuses      []GameStatus
	PublicOnly    bool
	Limit         int
	Offset        int
}

// Opponent returns the id of the other participant, or 0 when userID is not a
// participant at all.
func (g *Game) Opponent(userID int64) int64 {
	switch userID {
	case g.PlayerWhiteID:
		return g.PlayerBlackID
	case g.PlayerBlackID:
		return g.PlayerWhiteID
	}
	return 0
}

// IsParticipant reports whether userID plays in this game.
func (g *Game) IsParticipant(userID int64) bool {
	return userID == g.PlayerWhiteID || userID == g.PlayerBlackID
}

// Deadline is the turn-clock expiry for the current turn.
func (g *Game) Deadline() time.Time {
	return g.MoveStartTime.Add(time.Duration(g.TurnDayLimit) * 24 * time.Hour)
}
