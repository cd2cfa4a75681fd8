package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/commitplay/rps-escrow-backend/internal/apperror"
)

const balancesKey = "balances"

var ErrNegativeAmount = errors.New("amount must be positive")

// LedgerRepository is the withdrawable-balance store. Entries are
// created on first credit and never deleted; a missing field reads as
// zero. The engine is the only writer besides the withdraw entry point.
type LedgerRepository interface {
	Credit(ctx context.Context, account string, amount int64) error
	Debit(ctx context.Context, account string, amount int64) error
	BalanceOf(ctx context.Context, account string) (int64, error)
	All(ctx context.Context) (map[string]int64, error)
}

type dbLedger struct {
	client *redis.Client
}

func NewLedgerRepository(client *redis.Client) LedgerRepository {
	return &dbLedger{
		client: client,
	}
}

func (that *dbLedger) Credit(ctx context.Context, account string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit %d", ErrNegativeAmount, amount)
	}

	if err := that.client.HIncrBy(ctx, balancesKey, account, amount).Err(); err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}

	return nil
}

// Debit checks the balance before decrementing. Callers serialize per
// account, so the check-then-write pair cannot race with another debit.
func (that *dbLedger) Debit(ctx context.Context, account string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit %d", ErrNegativeAmount, amount)
	}

	balance, err := that.BalanceOf(ctx, account)
	if err != nil {
		return err
	}

	if balance < amount {
		return fmt.Errorf("%w: have %d, want %d", apperror.ErrInsufficientBalance, balance, amount)
	}

	if err = that.client.HIncrBy(ctx, balancesKey, account, -amount).Err(); err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	return nil
}

func (that *dbLedger) BalanceOf(ctx context.Context, account string) (int64, error) {
	response, err := that.client.HGet(ctx, balancesKey, account).Result()

	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := strconv.ParseInt(response, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse balance: %w", err)
	}

	return balance, nil
}

func (that *dbLedger) All(ctx context.Context) (map[string]int64, error) {
	response, err := that.client.HGetAll(ctx, balancesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	balances := make(map[string]int64, len(response))
	for account, raw := range response {
		balance, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance of %s: %w", account, err)
		}
		balances[account] = balance
	}

	return balances, nil
}
