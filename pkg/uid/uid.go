package uid

import (
	"github.com/google/uuid"
)

// GenerateMatchID returns a random identifier for a new match.
func GenerateMatchID() string {
	return uuid.NewString()
}

// IsMatchID reports whether s looks like an id produced by GenerateMatchID.
func IsMatchID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
