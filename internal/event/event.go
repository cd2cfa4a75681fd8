package event

import "time"

// One event is emitted per state transition. Field sets mirror the
// origin system's log topics, so off-system indexers can follow games
// without reading the store.

type GameStarted struct {
	GameID       string    `json:"game_id"`
	Host         string    `json:"host"`
	Counterparty string    `json:"counterparty,omitempty"` // empty for open games
	Deadline     time.Time `json:"deadline"`
	Wager        int64     `json:"wager"`
}

type PlayerJoined struct {
	GameID     string    `json:"game_id"`
	Player     string    `json:"player"`
	Wager      int64     `json:"wager"`
	CutoffTime time.Time `json:"cutoff_time"`
}

type FeePaid struct {
	GameID string `json:"game_id"`
	Player string `json:"player"`
	Wager  int64  `json:"wager"`
	Fee    int64  `json:"fee"`
}

type PlayerMoved struct {
	GameID string `json:"game_id"`
	Player string `json:"player"`
}

type GameResolved struct {
	GameID  string `json:"game_id"`
	Host    string `json:"host"`
	Player  string `json:"player"`
	Outcome string `json:"outcome"`
	Pot     int64  `json:"pot"`
}

type GameCanceled struct {
	GameID string `json:"game_id"`
	Host   string `json:"host"`
	Player string `json:"player,omitempty"`
}

type SoreLoserForfeited struct {
	GameID string `json:"game_id"`
	Host   string `json:"host"`
	Player string `json:"player"`
	Pot    int64  `json:"pot"`
}

type BalanceWithdrawn struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

// Name returns the wire name for a known event payload.
func Name(payload any) string {
	switch payload.(type) {
	case GameStarted:
		return "GameStarted"
	case PlayerJoined:
		return "PlayerJoined"
	case FeePaid:
		return "FeePaid"
	case PlayerMoved:
		return "PlayerMoved"
	case GameResolved:
		return "GameResolved"
	case GameCanceled:
		return "GameCanceled"
	case SoreLoserForfeited:
		return "SoreLoserForfeited"
	case BalanceWithdrawn:
		return "BalanceWithdrawn"
	default:
		return "Unknown"
	}
}
