package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chesspost/chesspost/internal/db"
	apperrors "github.com/chesspost/chesspost/internal/errors"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository/sqlite"
	"github.com/chesspost/chesspost/internal/services"
	"github.com/chesspost/chesspost/internal/testutil"
	"github.com/chesspost/chesspost/internal/testutil/mocks"
)

type matchmakingFixture struct {
	db      *db.DB
	svc     services.MatchmakingService
	aliceID int64
	bobID   int64
}

func newMatchmakingFixture(t *testing.T) *matchmakingFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, database) })

	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueNotification", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	requestRepo := sqlite.NewGameRequestRepository(database.DB)
	userRepo := sqlite.NewUserRepository(database.DB)

	return &matchmakingFixture{
		db:      database,
		svc:     services.NewMatchmakingService(requestRepo, userRepo, queue),
		aliceID: testutil.SeedUser(t, database, "alice", 1200),
		bobID:   testutil.SeedUser(t, database, "bob", 1500),
	}
}

func TestMatchmaking_CreateRequest_Validation(t *testing.T) {
	f := newMatchmakingFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.GameRequest
	}{
		{name: "turn limit too low", req: models.GameRequest{UserID: f.aliceID, TurnDayLimit: 0, Color: models.ColorWhite, MinRating: 1, MaxRating: 3000}},
		{name: "turn limit too high", req: models.GameRequest{UserID: f.aliceID, TurnDayLimit: 61, Color: models.ColorWhite, MinRating: 1, MaxRating: 3000}},
		{name: "bad color", req: models.GameRequest{UserID: f.aliceID, TurnDayLimit: 7, Color: "green", MinRating: 1, MaxRating: 3000}},
		{name: "inverted rating window", req: models.GameRequest{UserID: f.aliceID, TurnDayLimit: 7, Color: models.ColorWhite, MinRating: 2000, MaxRating: 1000}},
		{name: "self challenge", req: models.GameRequest{UserID: f.aliceID, OpponentID: f.aliceID, TurnDayLimit: 7, Color: models.ColorWhite, MinRating: 1, MaxRating: 3000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateRequest(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
		})
	}
}

func TestMatchmaking_CreateRequest_UnknownOpponent(t *testing.T) {
	f := newMatchmakingFixture(t)

	_, err := f.svc.CreateRequest(context.Background(), models.GameRequest{
		UserID:       f.aliceID,
		OpponentID:   99999,
		TurnDayLimit: 7,
		MinRating:    1,
		MaxRating:    3000,
		Color:        models.ColorWhite,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestMatchmaking_AcceptRequest_AssignsRequestedColor(t *testing.T) {
	f := newMatchmakingFixture(t)
	ctx := context.Background()

	reqID, err := f.svc.CreateRequest(ctx, models.GameRequest{
		UserID:       f.aliceID,
		TurnDayLimit: 7,
		MinRating:    1,
		MaxRating:    3000,
		Color:        models.ColorBlack,
		Public:       true,
	})
	require.NoError(t, err)

	gameID, err := f.svc.AcceptRequest(ctx, reqID, f.bobID)
	require.NoError(t, err)

	g, err := sqlite.NewGameRepository(f.db.DB).Get(ctx, gameID)
	require.NoError(t, err)
	// Alice asked for black, so Bob plays white and moves first.
	assert.Equal(t, f.bobID, g.PlayerWhiteID)
	assert.Equal(t, f.aliceID, g.PlayerBlackID)
	assert.Equal(t, f.bobID, g.ToMove)
	assert.Equal(t, models.StatusNoMove, g.Status)
	assert.True(t, g.Public)

	// The request is consumed; a second accept finds nothing.
	_, err = f.svc.AcceptRequest(ctx, reqID, f.bobID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestMatchmaking_AcceptRequest_RatingWindowEnforced(t *testing.T) {
	f := newMatchmakingFixture(t)
	ctx := context.Background()

	reqID, err := f.svc.CreateRequest(ctx, models.GameRequest{
		UserID:       f.aliceID,
		TurnDayLimit: 7,
		MinRating:    2000,
		MaxRating:    3000,
		Color:        models.ColorWhite,
	})
	require.NoError(t, err)

	// Bob's 1500 rating is below the window.
	_, err = f.svc.AcceptRequest(ctx, reqID, f.bobID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))
}

func TestMatchmaking_AcceptRequest_OwnRequestRejected(t *testing.T) {
	f := newMatchmakingFixture(t)
	ctx := context.Background()

	reqID, err := f.svc.CreateRequest(ctx, models.GameRequest{
		UserID:       f.aliceID,
		TurnDayLimit: 7,
		MinRating:    1,
		MaxRating:    3000,
		Color:        models.ColorWhite,
	})
	require.NoError(t, err)

	_, err = f.svc.AcceptRequest(ctx, reqID, f.aliceID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))
}

func TestMatchmaking_DeleteRequest_OnlyRequester(t *testing.T) {
	f := newMatchmakingFixture(t)
	ctx := context.Background()

	reqID, err := f.svc.CreateRequest(ctx, models.GameRequest{
		UserID:       f.aliceID,
		TurnDayLimit: 7,
		MinRating:    1,
		MaxRating:    3000,
		Color:        models.ColorRandom,
	})
	require.NoError(t, err)

	err = f.svc.DeleteRequest(ctx, reqID, f.bobID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))

	require.NoError(t, f.svc.DeleteRequest(ctx, reqID, f.aliceID))
}
