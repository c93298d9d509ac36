package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chesspost/chesspost/internal/db"
	apperrors "github.com/chesspost/chesspost/internal/errors"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository/sqlite"
	"github.com/chesspost/chesspost/internal/services"
	"github.com/chesspost/chesspost/internal/testutil"
)

type chatFixture struct {
	db      *db.DB
	svc     services.ChatService
	whiteID int64
	blackID int64
	gameID  int64
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, database) })

	whiteID := testutil.SeedUser(t, database, "alice", 1200)
	blackID := testutil.SeedUser(t, database, "bob", 1300)
	gameID := testutil.SeedGame(t, database, whiteID, blackID, 3)

	return &chatFixture{
		db:      database,
		svc:     services.NewChatService(sqlite.NewChatRepository(database.DB), sqlite.NewGameRepository(database.DB)),
		whiteID: whiteID,
		blackID: blackID,
		gameID:  gameID,
	}
}

func TestChatService_PostAndList(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.PostMessage(ctx, f.gameID, f.whiteID, "good luck!")
	require.NoError(t, err)
	_, err = f.svc.PostMessage(ctx, f.gameID, f.blackID, "you too")
	require.NoError(t, err)

	msgs, err := f.svc.ListMessages(ctx, f.gameID, f.whiteID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "good luck!", msgs[0].Message)
	assert.Equal(t, "alice", msgs[0].Username)
	assert.Equal(t, "you too", msgs[1].Message)
}

func TestChatService_OnlyParticipantsMayPost(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	outsiderID := testutil.SeedUser(t, f.db, "eve", 1000)

	_, err := f.svc.PostMessage(ctx, f.gameID, outsiderID, "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnauthorized))
}

func TestChatService_PublicGameReadableByAnyone(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	outsiderID := testutil.SeedUser(t, f.db, "eve", 1000)

	_, err := f.svc.PostMessage(ctx, f.gameID, f.whiteID, "hi")
	require.NoError(t, err)

	// Seeded games are public; spectators may read but not write.
	msgs, err := f.svc.ListMessages(ctx, f.gameID, outsiderID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, err = f.db.ExecContext(ctx, `UPDATE games SET public = 0 WHERE id = ?`, f.gameID)
	require.NoError(t, err)

	_, err = f.svc.ListMessages(ctx, f.gameID, outsiderID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestChatService_MessageValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.PostMessage(ctx, f.gameID, f.whiteID, "   ")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = f.svc.PostMessage(ctx, f.gameID, f.whiteID, strings.Repeat("x", models.ChatMsgMaxLen+1))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}
