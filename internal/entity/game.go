package entity

import (
	"time"
)

const (
	StatusHosted        = "hosted"
	StatusJoined        = "joined"
	StatusMoveSubmitted = "move_submitted"
	StatusResolved      = "resolved"
	StatusCanceled      = "canceled"
)

const (
	MoveRock     = "rock"
	MovePaper    = "paper"
	MoveScissors = "scissors"
)

const (
	OutcomeDraw      = "draw"
	OutcomeHostWin   = "host_win"
	OutcomePlayerWin = "player_win"
)

// beats maps each move to the move it defeats.
var beats = map[string]string{
	MoveRock:     MoveScissors,
	MoveScissors: MovePaper,
	MovePaper:    MoveRock,
}

// Game is a single escrowed match, keyed by the host's commitment id.
// The host's move stays hidden inside ID until reveal; the player's move
// stays hidden inside PlayerCommitment.
type Game struct {
	ID           string `json:"id"`
	Host         string `json:"host"`
	Counterparty string `json:"counterparty,omitempty"` // restriction; empty means open join
	Player       string `json:"player,omitempty"`       // account that actually joined

	Wager int64 `json:"wager"`
	Fee   int64 `json:"fee"`

	PlayerCommitment string `json:"player_commitment,omitempty"`
	HostMove         string `json:"host_move,omitempty"`
	PlayerMove       string `json:"player_move,omitempty"`

	JoinDeadline   time.Time `json:"join_deadline"`
	MoveDeadline   time.Time `json:"move_deadline,omitempty"`
	RevealDeadline time.Time `json:"reveal_deadline,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func NewGame(id, host, counterparty string, wager, fee int64, now, joinDeadline time.Time) *Game {
	return &Game{
		ID:           id,
		Host:         host,
		Counterparty: counterparty,
		Wager:        wager,
		Fee:          fee,
		JoinDeadline: joinDeadline,
		Status:       StatusHosted,
		CreatedAt:    now,
	}
}

// Outcome computes the fixed beats-relation for two legal moves.
func Outcome(hostMove, playerMove string) string {
	if hostMove == playerMove {
		return OutcomeDraw
	}
	if beats[hostMove] == playerMove {
		return OutcomeHostWin
	}
	return OutcomePlayerWin
}

// IsLegalMove reports whether move is one of the three playable symbols.
func IsLegalMove(move string) bool {
	_, ok := beats[move]
	return ok
}

// Pot is the combined wagers of both sides, pre-fee.
func (that *Game) Pot() int64 {
	return that.Wager * 2
}

func (that *Game) IsTerminal() bool {
	return that.Status == StatusResolved || that.Status == StatusCanceled
}

func (that *Game) IsHosted() bool {
	return that.Status == StatusHosted
}

func (that *Game) IsJoined() bool {
	return that.Status == StatusJoined
}

func (that *Game) IsMoveSubmitted() bool {
	return that.Status == StatusMoveSubmitted
}

// IsParticipant reports whether account is the host or the joined player.
func (that *Game) IsParticipant(account string) bool {
	return account == that.Host || (that.Player != "" && account == that.Player)
}

// CanJoin reports whether account may take the player seat. An empty
// counterparty restriction leaves the seat open to anyone but the host.
func (that *Game) CanJoin(account string) bool {
	if account == that.Host {
		return false
	}
	if that.Counterparty == "" {
		return true
	}
	return account == that.Counterparty
}

// RevealedCount counts how many sides have disclosed their move.
func (that *Game) RevealedCount() int {
	n := 0
	if that.HostMove != "" {
		n++
	}
	if that.PlayerMove != "" {
		n++
	}
	return n
}
