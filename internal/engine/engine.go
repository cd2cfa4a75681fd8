package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/commitplay/rps-escrow-backend/internal/apperror"
	"github.com/commitplay/rps-escrow-backend/internal/commitment"
	"github.com/commitplay/rps-escrow-backend/internal/entity"
	"github.com/commitplay/rps-escrow-backend/internal/event"
	"github.com/commitplay/rps-escrow-backend/internal/pkg"
	"github.com/commitplay/rps-escrow-backend/internal/repository"
)

var errEmptyIdentity = errors.New("commitment id and host are required")

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
}

type ledgerRepo interface {
	Credit(ctx context.Context, account string, amount int64) error
	Debit(ctx context.Context, account string, amount int64) error
	BalanceOf(ctx context.Context, account string) (int64, error)
	All(ctx context.Context) (map[string]int64, error)
}

type operationalGate interface {
	IsOperational() bool
	IsKilled() bool
}

// Rules are the wagering parameters fixed at startup. Fee and windows
// are copied into each game at creation and never read again for that
// game, so a config change cannot mutate games already in flight.
type Rules struct {
	Operator     string
	MinWager     int64
	Fee          int64
	JoinWindow   time.Duration
	MoveWindow   time.Duration
	RevealWindow time.Duration
	GraceWindow  time.Duration
}

// Engine drives the game lifecycle and is the only writer of both
// stores. Every entry point takes the per-game lock, so state checks
// and the following write never interleave for one game.
type Engine struct {
	logger  *slog.Logger
	games   gameRepo
	ledger  ledgerRepo
	gate    operationalGate
	emitter event.Emitter
	clock   clock.Clock
	rules   Rules
	locks   *pkg.KeyedMutex
}

func New(logger *slog.Logger, games gameRepo, ledger ledgerRepo, gate operationalGate, emitter event.Emitter, clk clock.Clock, rules Rules) *Engine {
	return &Engine{
		logger:  logger.With("component", "engine"),
		games:   games,
		ledger:  ledger,
		gate:    gate,
		emitter: emitter,
		clock:   clk,
		rules:   rules,
		locks:   pkg.NewKeyedMutex(),
	}
}

// HostGame escrows the host's wager under a fresh commitment id. The id
// doubles as the host's move commitment, produced by the commitment
// codec on the client side.
func (that *Engine) HostGame(ctx context.Context, id, host, counterparty string, wager, stake int64) (*entity.Game, error) {
	if !that.gate.IsOperational() {
		return nil, apperror.ErrNotOperational
	}

	if id == "" || host == "" {
		return nil, errEmptyIdentity
	}

	if wager < that.rules.MinWager {
		return nil, fmt.Errorf("%w: wager %d below minimum %d", apperror.ErrInsufficientStake, wager, that.rules.MinWager)
	}

	unlock := that.locks.Lock(id)
	defer unlock()

	existing, err := that.games.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to check game id: %w", err)
	}

	// a terminal record may be re-hosted; a live one may not
	if existing != nil && !existing.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", apperror.ErrDuplicateGame, id)
	}

	drawn, err := that.takeStake(ctx, host, stake, wager)
	if err != nil {
		return nil, err
	}

	now := that.clock.Now()
	game := entity.NewGame(id, host, counterparty, wager, that.rules.Fee, now, now.Add(that.rules.JoinWindow))

	if err = that.games.CreateOrUpdate(ctx, game); err != nil {
		that.refundStake(ctx, host, drawn)
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.emitter.Emit(ctx, event.GameStarted{
		GameID:       game.ID,
		Host:         game.Host,
		Counterparty: game.Counterparty,
		Deadline:     game.JoinDeadline,
		Wager:        game.Wager,
	})

	return game, nil
}

// Join stakes the player seat. The player covers the matching wager
// plus the operator fee; the fee is credited to the operator right
// here, not at settlement, and is never refunded.
func (that *Engine) Join(ctx context.Context, id, player string, stake int64) (*entity.Game, error) {
	if !that.gate.IsOperational() {
		return nil, apperror.ErrNotOperational
	}

	unlock := that.locks.Lock(id)
	defer unlock()

	game, err := that.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !game.IsHosted() {
		return nil, fmt.Errorf("%w: cannot join a %s game", apperror.ErrWrongState, game.Status)
	}

	now := that.clock.Now()
	if now.After(game.JoinDeadline) {
		return nil, fmt.Errorf("%w: join deadline was %s", apperror.ErrDeadlinePassed, game.JoinDeadline)
	}

	if !game.CanJoin(player) {
		return nil, fmt.Errorf("%w: %s may not join game %s", apperror.ErrNotParticipant, player, id)
	}

	required := game.Wager + game.Fee
	drawn, err := that.takeStake(ctx, player, stake, required)
	if err != nil {
		return nil, err
	}

	game.Player = player
	game.Status = entity.StatusJoined
	game.MoveDeadline = now.Add(that.rules.MoveWindow)

	if err = that.games.CreateOrUpdate(ctx, game); err != nil {
		that.refundStake(ctx, player, drawn)
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err = that.ledger.Credit(ctx, that.rules.Operator, game.Fee); err != nil {
		return nil, fmt.Errorf("failed to credit fee: %w", err)
	}

	that.emitter.Emit(ctx, event.PlayerJoined{
		GameID:     game.ID,
		Player:     player,
		Wager:      game.Wager,
		CutoffTime: game.MoveDeadline,
	})
	that.emitter.Emit(ctx, event.FeePaid{
		GameID: game.ID,
		Player: player,
		Wager:  game.Wager,
		Fee:    game.Fee,
	})

	return game, nil
}

// SubmitMove records the player's move commitment. Exactly once: a
// second call finds the game past the joined state and is rejected.
func (that *Engine) SubmitMove(ctx context.Context, id, player, moveCommitment string) (*entity.Game, error) {
	if !that.gate.IsOperational() {
		return nil, apperror.ErrNotOperational
	}

	unlock := that.locks.Lock(id)
	defer unlock()

	game, err := that.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !game.IsJoined() {
		return nil, fmt.Errorf("%w: cannot submit a move to a %s game", apperror.ErrWrongState, game.Status)
	}

	if player != game.Player {
		return nil, fmt.Errorf("%w: only the joined player may submit", apperror.ErrNotParticipant)
	}

	now := that.clock.Now()
	if now.After(game.MoveDeadline) {
		return nil, fmt.Errorf("%w: move deadline was %s", apperror.ErrDeadlinePassed, game.MoveDeadline)
	}

	if moveCommitment == "" {
		return nil, fmt.Errorf("%w: empty commitment", apperror.ErrCommitmentMismatch)
	}

	game.PlayerCommitment = moveCommitment
	game.Status = entity.StatusMoveSubmitted
	game.RevealDeadline = now.Add(that.rules.RevealWindow)

	if err = that.games.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	that.emitter.Emit(ctx, event.PlayerMoved{GameID: game.ID, Player: player})

	return game, nil
}

// Reveal discloses one side's preimage. The first reveal re-anchors the
// reveal deadline to a short grace window for the other side; the
// second reveal settles the pot.
func (that *Engine) Reveal(ctx context.Context, id, account, secret, move string) (*entity.Game, error) {
	if !that.gate.IsOperational() {
		return nil, apperror.ErrNotOperational
	}

	normalized, err := commitment.ParseMove(move)
	if err != nil {
		return nil, err
	}

	unlock := that.locks.Lock(id)
	defer unlock()

	game, err := that.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !game.IsMoveSubmitted() {
		return nil, fmt.Errorf("%w: cannot reveal in a %s game", apperror.ErrWrongState, game.Status)
	}

	if !game.IsParticipant(account) {
		return nil, fmt.Errorf("%w: %s is not playing game %s", apperror.ErrNotParticipant, account, id)
	}

	now := that.clock.Now()
	if now.After(game.RevealDeadline) {
		return nil, fmt.Errorf("%w: reveal deadline was %s", apperror.ErrDeadlinePassed, game.RevealDeadline)
	}

	switch account {
	case game.Host:
		if game.HostMove != "" {
			return nil, fmt.Errorf("%w: host already revealed", apperror.ErrWrongState)
		}
		if !commitment.Verify(account, secret, normalized, game.ID) {
			return nil, fmt.Errorf("%w: host preimage does not match", apperror.ErrCommitmentMismatch)
		}
		game.HostMove = normalized
	default:
		if game.PlayerMove != "" {
			return nil, fmt.Errorf("%w: player already revealed", apperror.ErrWrongState)
		}
		if !commitment.Verify(account, secret, normalized, game.PlayerCommitment) {
			return nil, fmt.Errorf("%w: player preimage does not match", apperror.ErrCommitmentMismatch)
		}
		game.PlayerMove = normalized
	}

	if game.RevealedCount() < 2 {
		game.RevealDeadline = now.Add(that.rules.GraceWindow)

		if err = that.games.CreateOrUpdate(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to update game: %w", err)
		}

		that.emitter.Emit(ctx, event.PlayerMoved{GameID: game.ID, Player: account})

		return game, nil
	}

	return that.settle(ctx, game)
}

// settle pays the pot out by the beats-relation. The terminal state is
// persisted before any credit so a replayed call can never double-pay.
func (that *Engine) settle(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	outcome := entity.Outcome(game.HostMove, game.PlayerMove)

	game.Status = entity.StatusResolved
	if err := that.games.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to resolve game: %w", err)
	}

	switch outcome {
	case entity.OutcomeDraw:
		// each side takes back its own wager
		if err := that.ledger.Credit(ctx, game.Host, game.Wager); err != nil {
			return nil, fmt.Errorf("failed to credit host: %w", err)
		}
		if err := that.ledger.Credit(ctx, game.Player, game.Wager); err != nil {
			return nil, fmt.Errorf("failed to credit player: %w", err)
		}
	case entity.OutcomeHostWin:
		if err := that.ledger.Credit(ctx, game.Host, game.Pot()); err != nil {
			return nil, fmt.Errorf("failed to credit host: %w", err)
		}
	case entity.OutcomePlayerWin:
		if err := that.ledger.Credit(ctx, game.Player, game.Pot()); err != nil {
			return nil, fmt.Errorf("failed to credit player: %w", err)
		}
	}

	that.emitter.Emit(ctx, event.GameResolved{
		GameID:  game.ID,
		Host:    game.Host,
		Player:  game.Player,
		Outcome: outcome,
		Pot:     game.Pot(),
	})

	return game, nil
}

// CancelGame is the host's remedy for a stalled game. Before any join
// it refunds the full wager; after a join that never progressed it
// applies the split penalty. Each branch fires only after its clock.
func (that *Engine) CancelGame(ctx context.Context, id, caller string) (*entity.Game, error) {
	if !that.gate.IsOperational() {
		return nil, apperror.ErrNotOperational
	}

	unlock := that.locks.Lock(id)
	defer unlock()

	game, err := that.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller != game.Host {
		return nil, fmt.Errorf("%w: only the host may cancel", apperror.ErrNotParticipant)
	}

	now := that.clock.Now()

	switch game.Status {
	case entity.StatusHosted:
		if !now.After(game.JoinDeadline) {
			return nil, fmt.Errorf("%w: join deadline is %s", apperror.ErrDeadlineNotReached, game.JoinDeadline)
		}

		game.Status = entity.StatusCanceled
		if err = that.games.CreateOrUpdate(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to cancel game: %w", err)
		}

		if err = that.ledger.Credit(ctx, game.Host, game.Wager); err != nil {
			return nil, fmt.Errorf("failed to refund host: %w", err)
		}

	case entity.StatusJoined:
		if !now.After(game.MoveDeadline) {
			return nil, fmt.Errorf("%w: move deadline is %s", apperror.ErrDeadlineNotReached, game.MoveDeadline)
		}

		game.Status = entity.StatusCanceled
		if err = that.games.CreateOrUpdate(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to cancel game: %w", err)
		}

		if err = that.splitPenaltyRefund(ctx, game); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: cannot cancel a %s game", apperror.ErrWrongState, game.Status)
	}

	that.emitter.Emit(ctx, event.GameCanceled{
		GameID: game.ID,
		Host:   game.Host,
		Player: game.Player,
	})

	return game, nil
}

// splitPenaltyRefund returns each side its wager minus half the fee.
// The half is floor division; the operator is credited exactly twice
// the half, so with an odd fee the players keep the spare unit and
// escrow drains to zero on every path.
func (that *Engine) splitPenaltyRefund(ctx context.Context, game *entity.Game) error {
	half := game.Fee / 2
	refund := game.Wager - half

	if refund > 0 {
		if err := that.ledger.Credit(ctx, game.Host, refund); err != nil {
			return fmt.Errorf("failed to refund host: %w", err)
		}
		if err := that.ledger.Credit(ctx, game.Player, refund); err != nil {
			return fmt.Errorf("failed to refund player: %w", err)
		}
	}

	if half > 0 {
		if err := that.ledger.Credit(ctx, that.rules.Operator, half*2); err != nil {
			return fmt.Errorf("failed to credit operator: %w", err)
		}
	}

	return nil
}

// ForceForfeit unsticks a game whose reveal window lapsed. Anyone may
// call it, so a disinterested referee can free the honest side's funds.
// A party who revealed in time can never be forfeited: the revealed
// side is always the one paid.
func (that *Engine) ForceForfeit(ctx context.Context, id, caller string) (*entity.Game, error) {
	if !that.gate.IsOperational() {
		return nil, apperror.ErrNotOperational
	}

	unlock := that.locks.Lock(id)
	defer unlock()

	game, err := that.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !game.IsMoveSubmitted() {
		return nil, fmt.Errorf("%w: cannot forfeit a %s game", apperror.ErrWrongState, game.Status)
	}

	now := that.clock.Now()
	if !now.After(game.RevealDeadline) {
		return nil, fmt.Errorf("%w: reveal deadline is %s", apperror.ErrDeadlineNotReached, game.RevealDeadline)
	}

	switch game.RevealedCount() {
	case 1:
		winner := game.Host
		if game.PlayerMove != "" {
			winner = game.Player
		}

		game.Status = entity.StatusResolved
		if err = that.games.CreateOrUpdate(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to resolve game: %w", err)
		}

		if err = that.ledger.Credit(ctx, winner, game.Pot()); err != nil {
			return nil, fmt.Errorf("failed to credit winner: %w", err)
		}

		that.logger.Info("sore loser forfeited", "game", game.ID, "winner", winner, "caller", caller)
		that.emitter.Emit(ctx, event.SoreLoserForfeited{
			GameID: game.ID,
			Host:   game.Host,
			Player: game.Player,
			Pot:    game.Pot(),
		})

	default:
		// neither side revealed: the pot is abandoned, treat it like a
		// move-timeout cancellation so funds never lock up
		game.Status = entity.StatusCanceled
		if err = that.games.CreateOrUpdate(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to cancel game: %w", err)
		}

		if err = that.splitPenaltyRefund(ctx, game); err != nil {
			return nil, err
		}

		that.emitter.Emit(ctx, event.GameCanceled{
			GameID: game.ID,
			Host:   game.Host,
			Player: game.Player,
		})
	}

	return game, nil
}

// Withdraw pays out accrued winnings. It stays reachable while paused
// so a pause cannot hold player funds hostage, but not after kill.
func (that *Engine) Withdraw(ctx context.Context, account string, amount int64) (int64, error) {
	if that.gate.IsKilled() {
		return 0, apperror.ErrNotOperational
	}

	unlock := that.locks.Lock(account)
	defer unlock()

	if err := that.ledger.Debit(ctx, account, amount); err != nil {
		return 0, err
	}

	that.emitter.Emit(ctx, event.BalanceWithdrawn{Account: account, Amount: amount})

	return that.ledger.BalanceOf(ctx, account)
}

func (that *Engine) Balance(ctx context.Context, account string) (int64, error) {
	return that.ledger.BalanceOf(ctx, account)
}

func (that *Engine) GameByID(ctx context.Context, id string) (*entity.Game, error) {
	return that.games.GetByID(ctx, id)
}

// Sweep moves every remaining balance to the operator. Only valid once
// the lifecycle guard is killed; it is the teardown counterpart of the
// origin system's emptyAccount.
func (that *Engine) Sweep(ctx context.Context) (int64, error) {
	if !that.gate.IsKilled() {
		return 0, apperror.ErrNotOperational
	}

	balances, err := that.ledger.All(ctx)
	if err != nil {
		return 0, err
	}

	var swept int64
	for account, balance := range balances {
		if account == that.rules.Operator || balance <= 0 {
			continue
		}

		unlock := that.locks.Lock(account)
		err = that.ledger.Debit(ctx, account, balance)
		unlock()
		if err != nil {
			return swept, fmt.Errorf("failed to sweep %s: %w", account, err)
		}

		if err = that.ledger.Credit(ctx, that.rules.Operator, balance); err != nil {
			return swept, fmt.Errorf("failed to credit operator: %w", err)
		}

		swept += balance
	}

	that.logger.Info("swept balances to operator", "amount", swept)

	return swept, nil
}

// takeStake draws the required escrow from an explicit stake plus, if
// short, the caller's ledger balance; a surplus is parked back on the
// ledger. Returns how much was drawn from the ledger so a failed write
// can be compensated.
func (that *Engine) takeStake(ctx context.Context, account string, offered, required int64) (int64, error) {
	if offered < 0 {
		return 0, fmt.Errorf("%w: negative stake", apperror.ErrInsufficientStake)
	}

	if offered >= required {
		if surplus := offered - required; surplus > 0 {
			if err := that.ledger.Credit(ctx, account, surplus); err != nil {
				return 0, fmt.Errorf("failed to park surplus: %w", err)
			}
		}
		return 0, nil
	}

	shortfall := required - offered
	if err := that.ledger.Debit(ctx, account, shortfall); err != nil {
		if errors.Is(err, apperror.ErrInsufficientBalance) {
			return 0, fmt.Errorf("%w: offered %d of %d and balance cannot cover the rest",
				apperror.ErrInsufficientStake, offered, required)
		}
		return 0, err
	}

	return shortfall, nil
}

func (that *Engine) refundStake(ctx context.Context, account string, drawn int64) {
	if drawn <= 0 {
		return
	}

	if err := that.ledger.Credit(ctx, account, drawn); err != nil {
		that.logger.Error("failed to return drawn stake", "account", account, "amount", drawn, "error", err)
	}
}
