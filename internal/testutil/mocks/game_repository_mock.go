package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chesspost/chesspost/internal/models"
)

// MockGameRepository is a mock implementation of repository.GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Get(ctx context.Context, id int64) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) List(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Game), args.Error(1)
}

func (m *MockGameRepository) Create(ctx context.Context, game models.Game) (int64, error) {
	args := m.Called(ctx, game)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGameRepository) ApplyTransition(ctx context.Context, game *models.Game, expectedToMove int64, expected []models.GameStatus) (bool, error) {
	args := m.Called(ctx, game, expectedToMove, expected)
	return args.Bool(0), args.Error(1)
}
