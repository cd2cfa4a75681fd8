package commitment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/commitplay/rps-escrow-backend/internal/apperror"
	"github.com/commitplay/rps-escrow-backend/internal/entity"
)

// ParseMove normalizes a move symbol and rejects anything outside the
// legal set before it can reach the hash.
func ParseMove(move string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(move))
	if !entity.IsLegalMove(normalized) {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidMove, move)
	}

	return normalized, nil
}

// Commit derives the commitment id for (account, secret, move). The
// account is folded in so a commitment cannot be replayed by the other
// seat, and the secret keeps the move unguessable from the id alone.
func Commit(account, secret, move string) (string, error) {
	normalized, err := ParseMove(move)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(account + "|" + secret + "|" + normalized))

	return hex.EncodeToString(sum[:]), nil
}

// Verify checks that (account, secret, move) is the preimage of id.
func Verify(account, secret, move, id string) bool {
	derived, err := Commit(account, secret, move)
	if err != nil {
		return false
	}

	return derived == id
}
