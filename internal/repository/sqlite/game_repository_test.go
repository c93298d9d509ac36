package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/chesspost/chesspost/internal/db"
	"github.com/chesspost/chesspost/internal/models"
	"github.com/chesspost/chesspost/internal/repository"
	"github.com/chesspost/chesspost/internal/repository/sqlite"
	"github.com/chesspost/chesspost/internal/testutil"
)

type GameRepositorySuite struct {
	suite.Suite
	db      *db.DB
	repo    repository.GameRepository
	whiteID int64
	blackID int64
}

func (s *GameRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewGameRepository(s.db.DB)
	s.whiteID = testutil.SeedUser(s.T(), s.db, "alice", 1200)
	s.blackID = testutil.SeedUser(s.T(), s.db, "bob", 1300)
}

func (s *GameRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *GameRepositorySuite) newGame() models.Game {
	return models.Game{
		PlayerWhiteID: s.whiteID,
		PlayerBlackID: s.blackID,
		ToMove:        s.whiteID,
		Movetext:      "",
		MoveStartTime: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		TurnDayLimit:  3,
		Status:        models.StatusNoMove,
		Winner:        models.NoWinner,
		Public:        true,
	}
}

func (s *GameRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()

	id, err := s.repo.Create(ctx, s.newGame())
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(0))

	g, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(s.whiteID, g.PlayerWhiteID)
	s.Assert().Equal(s.blackID, g.PlayerBlackID)
	s.Assert().Equal(models.StatusNoMove, g.Status)
	s.Assert().Equal("alice", g.PlayerWhiteName)
	s.Assert().Equal("bob", g.PlayerBlackName)
	s.Assert().True(g.Public)
}

func (s *GameRepositorySuite) TestGet_NotFound() {
	g, err := s.repo.Get(context.Background(), 99999)
	s.Assert().Error(err)
	s.Assert().Nil(g)
}

func (s *GameRepositorySuite) TestList_ByParticipantAndStatus() {
	ctx := context.Background()

	activeID, err := s.repo.Create(ctx, s.newGame())
	s.Require().NoError(err)

	done := s.newGame()
	done.Status = models.StatusCheckmate
	done.Winner = s.whiteID
	_, err = s.repo.Create(ctx, done)
	s.Require().NoError(err)

	games, err := s.repo.List(ctx, models.GameFilter{
		ParticipantID: s.blackID,
		Statuses:      models.ActiveStatuses,
	})
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Assert().Equal(activeID, games[0].ID)

	all, err := s.repo.List(ctx, models.GameFilter{ParticipantID: s.blackID})
	s.Require().NoError(err)
	s.Assert().Len(all, 2)

	none, err := s.repo.List(ctx, models.GameFilter{ParticipantID: 424242})
	s.Require().NoError(err)
	s.Assert().Empty(none)
}

func (s *GameRepositorySuite) TestApplyTransition_Applies() {
	ctx := context.Background()

	id, err := s.repo.Create(ctx, s.newGame())
	s.Require().NoError(err)
	g, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)

	g.Status = models.StatusInProgress
	g.ToMove = s.blackID
	g.Movetext = "1. e2e4 *\n"
	g.MoveStartTime = g.MoveStartTime.Add(time.Hour)

	applied, err := s.repo.ApplyTransition(ctx, g, s.whiteID, models.ActiveStatuses)
	s.Require().NoError(err)
	s.Assert().True(applied)

	reloaded, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusInProgress, reloaded.Status)
	s.Assert().Equal(s.blackID, reloaded.ToMove)
	s.Assert().Equal("1. e2e4 *\n", reloaded.Movetext)
}

func (s *GameRepositorySuite) TestApplyTransition_StaleIsDiscarded() {
	ctx := context.Background()

	id, err := s.repo.Create(ctx, s.newGame())
	s.Require().NoError(err)
	g, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)

	// A concurrent sweep wins the race: the game times out first.
	timedOut := *g
	timedOut.Status = models.StatusTimeout
	timedOut.Winner = s.blackID
	applied, err := s.repo.ApplyTransition(ctx, &timedOut, s.whiteID, models.ActiveStatuses)
	s.Require().NoError(err)
	s.Require().True(applied)

	// The move transition computed against the stale snapshot must not land.
	moved := *g
	moved.Status = models.StatusInProgress
	moved.ToMove = s.blackID
	moved.Movetext = "1. e2e4 *\n"
	applied, err = s.repo.ApplyTransition(ctx, &moved, s.whiteID, models.ActiveStatuses)
	s.Require().NoError(err)
	s.Assert().False(applied)

	reloaded, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusTimeout, reloaded.Status)
	s.Assert().Equal(s.blackID, reloaded.Winner)
	s.Assert().Empty(reloaded.Movetext)
}

func (s *GameRepositorySuite) TestApplyTransition_TurnAlreadyPassed() {
	ctx := context.Background()

	id, err := s.repo.Create(ctx, s.newGame())
	s.Require().NoError(err)
	g, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)

	// Two moves computed against the same snapshot: the first lands and
	// hands the turn to black.
	first := *g
	first.Status = models.StatusInProgress
	first.ToMove = s.blackID
	first.Movetext = "1. e2e4 *\n"
	applied, err := s.repo.ApplyTransition(ctx, &first, s.whiteID, models.ActiveStatuses)
	s.Require().NoError(err)
	s.Require().True(applied)

	// The second still sees an active game, but the turn guard rejects it:
	// the row's to_move is no longer white.
	second := *g
	second.Status = models.StatusInProgress
	second.ToMove = s.blackID
	second.Movetext = "1. d2d4 *\n"
	applied, err = s.repo.ApplyTransition(ctx, &second, s.whiteID, models.ActiveStatuses)
	s.Require().NoError(err)
	s.Assert().False(applied)

	reloaded, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal("1. e2e4 *\n", reloaded.Movetext)
	s.Assert().Equal(s.blackID, reloaded.ToMove)
}

func TestGameRepositorySuite(t *testing.T) {
	suite.Run(t, new(GameRepositorySuite))
}
