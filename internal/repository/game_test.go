package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitplay/rps-escrow-backend/internal/entity"
	"github.com/commitplay/rps-escrow-backend/testing/suite"
)

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a freshly hosted game
	now := time.Now().UTC().Truncate(time.Second)
	game := entity.NewGame("a1b2c3", "alice", "bob", 5000, 1000, now, now.Add(time.Hour))

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and game is stored
	require.NoError(t, err)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game
		now := time.Now().UTC().Truncate(time.Second)
		game := entity.NewGame("a1b2c3", "alice", "bob", 5000, 1000, now, now.Add(time.Hour))

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		require.Equal(t, game.ID, retrievedGame.ID)
		require.Equal(t, game.Host, retrievedGame.Host)
		require.Equal(t, game.Wager, retrievedGame.Wager)
		require.Equal(t, entity.StatusHosted, retrievedGame.Status)
		require.True(t, game.JoinDeadline.Equal(retrievedGame.JoinDeadline))
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "no-such-game")

		// Then: an ErrGameNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrGameNotFound, err)
		assert.Nil(t, retrievedGame)
	})
}

func TestGameRepository_UpdatePreservesTerminalState(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	now := time.Now().UTC().Truncate(time.Second)
	game := entity.NewGame("a1b2c3", "alice", "", 5000, 1000, now, now.Add(time.Hour))
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// When: the game is resolved and saved again
	game.Player = "carol"
	game.Status = entity.StatusResolved
	game.HostMove = entity.MovePaper
	game.PlayerMove = entity.MoveScissors
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// Then: the stored record reflects the terminal state
	retrievedGame, err := gameRepo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.True(t, retrievedGame.IsTerminal())
	assert.Equal(t, entity.MovePaper, retrievedGame.HostMove)
	assert.Equal(t, "carol", retrievedGame.Player)
}
