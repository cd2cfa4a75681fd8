package lifecycle

import (
	"errors"
	"sync"
)

const (
	StateActive = "active"
	StatePaused = "paused"
	StateKilled = "killed"
)

var (
	ErrNotPaused     = errors.New("operation requires the paused state")
	ErrNotActive     = errors.New("operation requires the active state")
	ErrAlreadyKilled = errors.New("service has been killed")
)

// Guard is the operational gate consulted by the engine before every
// mutating call. Active -> Paused is reversible; Paused -> Killed is
// terminal.
type Guard struct {
	mu    sync.RWMutex
	state string
}

func NewGuard() *Guard {
	return &Guard{state: StateActive}
}

func (that *Guard) State() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.state
}

// IsOperational reports whether mutating game operations are permitted.
func (that *Guard) IsOperational() bool {
	return that.State() == StateActive
}

func (that *Guard) IsKilled() bool {
	return that.State() == StateKilled
}

func (that *Guard) Pause() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch that.state {
	case StateKilled:
		return ErrAlreadyKilled
	case StatePaused:
		return ErrNotActive
	}

	that.state = StatePaused

	return nil
}

func (that *Guard) Resume() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch that.state {
	case StateKilled:
		return ErrAlreadyKilled
	case StateActive:
		return ErrNotPaused
	}

	that.state = StateActive

	return nil
}

// Kill is irreversible and only valid from the paused state.
func (that *Guard) Kill() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch that.state {
	case StateKilled:
		return ErrAlreadyKilled
	case StateActive:
		return ErrNotPaused
	}

	that.state = StateKilled

	return nil
}
