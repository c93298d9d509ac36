package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/chesspost/chesspost/internal/errors"
	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
)

// UserService handles registration and authentication
type UserService interface {
	Register(ctx context.Context, username, password, email string, rating int, notifications bool) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	UpdateSettings(ctx context.Context, id int64, email string, notifications bool) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Register(ctx context.Context, username, password, email string, rating int, notifications bool) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("registering user: username=%s", username)

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "cannot be empty")
	}
	if len(username) > models.UsernameMaxLen {
		return nil, apperrors.NewValidationError("username", "too long")
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password", "cannot be empty")
	}
	if len(password) > models.PasswordMaxLen {
		return nil, apperrors.NewValidationError("password", "too long")
	}

	// Out-of-range self-reported ratings are clamped, not rejected.
	if rating < models.RatingMin || rating > models.RatingMax {
		rating = models.RatingDefault
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewValidationError("username", "already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to check username: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	u := models.User{
		Username:      username,
		PasswordHash:  string(hash),
		Email:         strings.TrimSpace(email),
		Rating:        rating,
		Notifications: notifications,
	}
	id, err := s.userRepo.Create(ctx, u)
	if err != nil {
		log.Error("failed to create user: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	u.ID = id
	log.Info("user registered: id=%d username=%s", id, username)
	return &u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("authenticating user: username=%s", username)

	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewUnauthorizedError("invalid username or password")
		}
		log.Error("failed to get user: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.NewUnauthorizedError("invalid username or password")
	}
	return u, nil
}

// UpdateSettings changes a user's email address and notification opt-in and
// returns the updated record.
func (s *userService) UpdateSettings(ctx context.Context, id int64, email string, notifications bool) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating settings: id=%d notifications=%v", id, notifications)

	email = strings.TrimSpace(email)
	if notifications && email == "" {
		return nil, apperrors.NewValidationError("email", "required to receive notifications")
	}

	if err := s.userRepo.UpdateSettings(ctx, id, email, notifications); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user", id)
		}
		log.Error("failed to update settings: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return s.Get(ctx, id)
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user", id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return u, nil
}
