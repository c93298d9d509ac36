package sqlite

import (
	"context"
	"database/sql"

	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
)

type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new ChatRepository implementation
func NewChatRepository(db *sql.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Insert(ctx context.Context, msg models.ChatMessage) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("chat_repo")
	log.Debug("inserting chat message: game_id=%d, user_id=%d", msg.GameID, msg.UserID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO chats (game_id, user_id, message)
VALUES (?, ?, ?)
`, msg.GameID, msg.UserID, msg.Message)
	if err != nil {
		log.Error("failed to insert chat message: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *chatRepository) ListForGame(ctx context.Context, gameID int64) ([]models.ChatMessage, error) {
	log := logger.FromContext(ctx).WithPrefix("chat_repo")
	log.Debug("listing chat messages: game_id=%d", gameID)

	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.game_id, c.user_id, c.message, c.created_at, u.username
FROM chats c
JOIN users u ON u.id = c.user_id
WHERE c.game_id = ?
ORDER BY c.created_at ASC, c.id ASC
`, gameID)
	if err != nil {
		log.Error("failed to list chat messages: %v", err)
		return nil, err
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.GameID, &m.UserID, &m.Message, &m.CreatedAt, &m.Username); err != nil {
			log.Error("failed to scan chat row: %v", err)
			return nil, err
		}
		msgs = append(msgs, m)
	}
	log.Debug("found %d chat messages", len(msgs))
	return msgs, rows.Err()
}
