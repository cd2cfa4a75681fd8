package apperror

import "errors"

var (
	ErrInvalidMove         = errors.New("move is not in the legal set")
	ErrDuplicateGame       = errors.New("game id is already in play")
	ErrNotParticipant      = errors.New("caller is not authorized for this game")
	ErrWrongState          = errors.New("operation is not valid in the current game state")
	ErrDeadlinePassed      = errors.New("deadline has already passed")
	ErrDeadlineNotReached  = errors.New("deadline has not been reached yet")
	ErrCommitmentMismatch  = errors.New("revealed move does not match the commitment")
	ErrInsufficientStake   = errors.New("stake does not cover the required amount")
	ErrInsufficientBalance = errors.New("withdrawal exceeds the account balance")
	ErrNotOperational      = errors.New("service is paused or killed")
)
