package domain

// PieceState is an immutable placement of a piece: its kind, rotation index
// and the board position of its bounding box's top-left corner.
type PieceState struct {
	Kind     Kind `json:"kind"`
	Rotation int  `json:"rotation"`
	Row      int  `json:"row"`
	Col      int  `json:"col"`
}

func (s PieceState) Shape() Shape {
	return ShapeOf(s.Kind, s.Rotation)
}

// Moved returns the state shifted by (dr, dc) and rotated by drot steps,
// with the rotation wrapped modulo the kind's rotation count.
func (s PieceState) Moved(dr, dc, drot int) PieceState {
	return PieceState{
		Kind:     s.Kind,
		Rotation: NormalizeRotation(s.Kind, s.Rotation+drot),
		Row:      s.Row + dr,
		Col:      s.Col + dc,
	}
}

type PieceStatus int

const (
	Falling PieceStatus = iota
	Locked
)

// ActivePiece is a falling piece bound to the board it will lock into.
// Falling -> Locked is one-way.
type ActivePiece struct {
	board      *Board
	state      PieceState
	status     PieceStatus
	generation uint64
}

// NewActivePiece places a piece of kind at row 0, column col. generation is
// the per-spawn identifier assigned by the owner.
func NewActivePiece(board *Board, kind Kind, col int, generation uint64) *ActivePiece {
	return &ActivePiece{
		board:      board,
		state:      PieceState{Kind: kind, Rotation: 0, Row: 0, Col: col},
		generation: generation,
	}
}

func (p *ActivePiece) State() PieceState   { return p.state }
func (p *ActivePiece) Kind() Kind          { return p.state.Kind }
func (p *ActivePiece) Generation() uint64  { return p.generation }
func (p *ActivePiece) Status() PieceStatus { return p.status }
func (p *ActivePiece) Locked() bool        { return p.status == Locked }
func (p *ActivePiece) Board() *Board       { return p.board }

// Fits reports whether the current state overlaps nothing. A freshly spawned
// piece that does not fit means the game is over.
func (p *ActivePiece) Fits() bool {
	return p.board.Fits(p.state.Shape(), p.state.Row, p.state.Col)
}

// TryMove applies the move if the resulting placement fits. On failure the
// state is left untouched.
func (p *ActivePiece) TryMove(dr, dc, drot int) bool {
	if p.status == Locked {
		return false
	}
	next := p.state.Moved(dr, dc, drot)
	if !p.board.Fits(next.Shape(), next.Row, next.Col) {
		return false
	}
	p.state = next
	return true
}

func (p *ActivePiece) TryLeft() bool      { return p.TryMove(0, -1, 0) }
func (p *ActivePiece) TryRight() bool     { return p.TryMove(0, 1, 0) }
func (p *ActivePiece) TryRotateCW() bool  { return p.TryMove(0, 0, 1) }
func (p *ActivePiece) TryRotateCCW() bool { return p.TryMove(0, 0, -1) }

// SoftDropOrLock moves the piece down one row. When the move is blocked the
// piece's cells are written into the board and the piece becomes Locked.
// Returns false exactly when it locked.
func (p *ActivePiece) SoftDropOrLock() bool {
	if p.status == Locked {
		return false
	}
	if p.TryMove(1, 0, 0) {
		return true
	}
	p.lock()
	return false
}

func (p *ActivePiece) lock() {
	p.board.Place(p.state.Shape(), p.state.Row, p.state.Col, Color(p.state.Kind))
	p.status = Locked
}
