package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%d", id)

	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, email, rating, notifications, created_at
FROM users
WHERE id = ?
`, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Rating, &u.Notifications, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found: id=%d", id)
		} else {
			log.Error("failed to get user: %v", err)
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user by username: %s", username)

	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, email, rating, notifications, created_at
FROM users
WHERE username = ?
`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Rating, &u.Notifications, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found: username=%s", username)
		} else {
			log.Error("failed to get user: %v", err)
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateSettings(ctx context.Context, id int64, email string, notifications bool) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating user settings: id=%d notifications=%v", id, notifications)

	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET email = ?, notifications = ?
WHERE id = ?
`, email, notifications, id)
	if err != nil {
		log.Error("failed to update user settings: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read rows affected: %v", err)
		return err
	}
	if n == 0 {
		log.Debug("user not found: id=%d", id)
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, u models.User) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("creating user: username=%s", u.Username)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, email, rating, notifications)
VALUES (?, ?, ?, ?, ?)
`, u.Username, u.PasswordHash, u.Email, u.Rating, u.Notifications)
	if err != nil {
		log.Error("failed to create user: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get user id: %v", err)
		return 0, err
	}
	log.Debug("user created: id=%d", id)
	return id, nil
}
