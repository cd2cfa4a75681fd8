package commitment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitplay/rps-escrow-backend/internal/apperror"
	"github.com/commitplay/rps-escrow-backend/internal/entity"
)

func TestCommit(t *testing.T) {
	t.Run("produces a fixed-width hex id", func(t *testing.T) {
		id, err := Commit("alice", "hello", entity.MovePaper)

		require.NoError(t, err)
		assert.Len(t, id, 64)
	})

	t.Run("normalizes the move before hashing", func(t *testing.T) {
		id1, err := Commit("alice", "hello", "PAPER")
		require.NoError(t, err)

		id2, err := Commit("alice", "hello", entity.MovePaper)
		require.NoError(t, err)

		assert.Equal(t, id1, id2)
	})

	t.Run("rejects an illegal move before hashing", func(t *testing.T) {
		_, err := Commit("alice", "hello", "lizard")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrInvalidMove)
	})

	t.Run("distinct inputs give distinct ids", func(t *testing.T) {
		byMove, err := Commit("alice", "hello", entity.MoveRock)
		require.NoError(t, err)
		bySecret, err := Commit("alice", "world", entity.MovePaper)
		require.NoError(t, err)
		byAccount, err := Commit("bob", "hello", entity.MovePaper)
		require.NoError(t, err)
		base, err := Commit("alice", "hello", entity.MovePaper)
		require.NoError(t, err)

		assert.NotEqual(t, base, byMove)
		assert.NotEqual(t, base, bySecret)
		assert.NotEqual(t, base, byAccount)
	})
}

func TestVerify(t *testing.T) {
	id, err := Commit("alice", "hello", entity.MovePaper)
	require.NoError(t, err)

	t.Run("accepts the original preimage", func(t *testing.T) {
		assert.True(t, Verify("alice", "hello", entity.MovePaper, id))
	})

	t.Run("rejects a different move", func(t *testing.T) {
		assert.False(t, Verify("alice", "hello", entity.MoveRock, id))
	})

	t.Run("rejects a different secret", func(t *testing.T) {
		assert.False(t, Verify("alice", "world", entity.MovePaper, id))
	})

	t.Run("rejects the other seat's account", func(t *testing.T) {
		assert.False(t, Verify("bob", "hello", entity.MovePaper, id))
	})

	t.Run("rejects an illegal move without erroring", func(t *testing.T) {
		assert.False(t, Verify("alice", "hello", "lizard", id))
	})
}
