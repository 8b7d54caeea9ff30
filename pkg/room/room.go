// Package room derives real-time channel tokens from conversation
// participants. Both sides of a conversation must compute the same token
// without coordinating, so the token is the sorted participant pair.
package room

import (
	"errors"
	"fmt"
	"strings"
)

const prefix = "dm"

// ErrInvalidRoom is returned for tokens that do not name a two-party
// conversation.
var ErrInvalidRoom = errors.New("invalid room token")

// Resolve returns the channel token for a conversation between a and b.
// It is symmetric: Resolve(a, b) == Resolve(b, a).
func Resolve(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s:%s:%s", prefix, a, b)
}

// Parse splits a token into its two participants. It rejects anything that
// Resolve could not have produced.
func Parse(token string) (string, string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != prefix {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRoom, token)
	}
	a, b := parts[1], parts[2]
	if a == "" || b == "" {
		return "", "", fmt.Errorf("%w: empty participant in %q", ErrInvalidRoom, token)
	}
	if a > b {
		return "", "", fmt.Errorf("%w: participants out of order in %q", ErrInvalidRoom, token)
	}
	return a, b, nil
}

// HasParticipant reports whether userID is one of the token's participants.
// Malformed tokens have no participants.
func HasParticipant(token, userID string) bool {
	a, b, err := Parse(token)
	if err != nil {
		return false
	}
	return userID == a || userID == b
}
