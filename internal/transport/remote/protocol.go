// Package remote speaks the line-delimited JSON planner protocol: one request
// object per TCP connection, answered by one response object.
package remote

import (
	"fmt"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

// GameRequest describes the board and the pieces in play.
type GameRequest struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Cells        [][]int `json:"cells"`
	CurrentShape [][]int `json:"currentShape"`
	NextShape    [][]int `json:"nextShape"` // null when the next piece is hidden
}

// MoveResponse is the placement chosen for the current piece.
type MoveResponse struct {
	Column   int    `json:"column"`
	Rotation int    `json:"rotation"`
	Error    string `json:"error,omitempty"`
}

const (
	ErrMalformedRequest  protocolError = "malformed planner request"
	ErrMalformedResponse protocolError = "malformed planner response"
	ErrEmptyResponse     protocolError = "empty response from planner"
)

type protocolError string

func (e protocolError) Error() string {
	return string(e)
}

func newGameRequest(board *domain.Board, current domain.Shape, next domain.Shape) GameRequest {
	req := GameRequest{
		Width:        board.Cols(),
		Height:       board.Rows(),
		Cells:        board.Cells(),
		CurrentShape: current.Ints(),
	}
	if next != nil {
		req.NextShape = next.Ints()
	}
	return req
}

// decode validates a request and resolves its shape matrices to kinds.
func (r GameRequest) decode() (*domain.Board, domain.Kind, *domain.Kind, error) {
	if r.Width <= 0 || r.Height <= 0 || len(r.Cells) != r.Height {
		return nil, 0, nil, fmt.Errorf("%w: board is %dx%d with %d rows", ErrMalformedRequest, r.Width, r.Height, len(r.Cells))
	}
	for i, row := range r.Cells {
		if len(row) != r.Width {
			return nil, 0, nil, fmt.Errorf("%w: row %d has %d cells", ErrMalformedRequest, i, len(row))
		}
	}

	kind, _, err := domain.KindFromShape(domain.ShapeFromInts(r.CurrentShape))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: current shape: %w", ErrMalformedRequest, err)
	}

	var next *domain.Kind
	if r.NextShape != nil {
		k, _, err := domain.KindFromShape(domain.ShapeFromInts(r.NextShape))
		if err != nil {
			return nil, 0, nil, fmt.Errorf("%w: next shape: %w", ErrMalformedRequest, err)
		}
		next = &k
	}
	return domain.BoardFromCells(r.Cells), kind, next, nil
}
