package domain

import "strings"

// Kind identifies one of the seven tetromino shapes.
type Kind int

const (
	KindI Kind = iota
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
)

// KindCount is the number of distinct piece kinds.
const KindCount = 7

// Empty is the value of an unoccupied board cell.
const Empty = 0

var kindNames = [KindCount]string{"I", "O", "T", "S", "Z", "J", "L"}

// AllKinds returns every piece kind in catalog order.
func AllKinds() []Kind {
	kinds := make([]Kind, KindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) Valid() bool {
	return k >= 0 && k < KindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return "?"
	}
	return kindNames[k]
}

// ParseKind accepts a single-letter kind name, case-insensitive.
func ParseKind(s string) (Kind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, ErrUnknownKind
}

// basic errors that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrUnknownKind       Error = "unknown piece kind"
	ErrUnknownShape      Error = "shape does not match any piece kind"
	ErrBoardTooNarrow    Error = "board is narrower than the widest piece"
	ErrInvalidDimensions Error = "board dimensions must be positive"
	ErrGameOver          Error = "game is over"
	ErrMatchNotFound     Error = "match not found"
	ErrInvalidSide       Error = "invalid side"
	ErrInvalidPlayers    Error = "player count must be 1 or 2"
	ErrUnknownAction     Error = "unknown action"
	ErrAIControlled      Error = "side is controlled by the planner"
)
