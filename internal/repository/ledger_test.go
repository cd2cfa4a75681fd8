package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitplay/rps-escrow-backend/internal/apperror"
	"github.com/commitplay/rps-escrow-backend/testing/suite"
)

func TestLedgerRepository_Credit(t *testing.T) {
	ctx, st := suite.New(t)

	ledger := NewLedgerRepository(st.Storage)

	// Given: an account with no prior entry
	balance, err := ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, balance)

	// When: the account is credited twice
	require.NoError(t, ledger.Credit(ctx, "alice", 5000))
	require.NoError(t, ledger.Credit(ctx, "alice", 1000))

	// Then: the balance accumulates
	balance, err = ledger.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), balance)
}

func TestLedgerRepository_Credit_RejectsNonPositive(t *testing.T) {
	ctx, st := suite.New(t)

	ledger := NewLedgerRepository(st.Storage)

	require.Error(t, ledger.Credit(ctx, "alice", 0))
	require.Error(t, ledger.Credit(ctx, "alice", -5))
}

func TestLedgerRepository_Debit(t *testing.T) {
	t.Run("Debit_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		ledger := NewLedgerRepository(st.Storage)
		require.NoError(t, ledger.Credit(ctx, "alice", 9000))

		// When: the full balance is withdrawn
		err := ledger.Debit(ctx, "alice", 9000)

		// Then: the entry remains at zero, not deleted
		require.NoError(t, err)
		balance, err := ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("Debit_Insufficient", func(t *testing.T) {
		ctx, st := suite.New(t)

		ledger := NewLedgerRepository(st.Storage)
		require.NoError(t, ledger.Credit(ctx, "alice", 1000))

		// When: more than the balance is requested
		err := ledger.Debit(ctx, "alice", 1001)

		// Then: the debit is rejected and the balance is untouched
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrInsufficientBalance)

		balance, err := ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), balance)
	})

	t.Run("Debit_UnknownAccount", func(t *testing.T) {
		ctx, st := suite.New(t)

		ledger := NewLedgerRepository(st.Storage)

		err := ledger.Debit(ctx, "nobody", 1)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrInsufficientBalance)
	})
}

func TestLedgerRepository_All(t *testing.T) {
	ctx, st := suite.New(t)

	ledger := NewLedgerRepository(st.Storage)
	require.NoError(t, ledger.Credit(ctx, "alice", 5000))
	require.NoError(t, ledger.Credit(ctx, "bob", 1000))
	require.NoError(t, ledger.Credit(ctx, "bob", 500))

	balances, err := ledger.All(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"alice": 5000, "bob": 1500}, balances)
}
