package domain

// Board is a rows x cols grid of cell values. 0 is empty, 1..7 is a locked
// cell carrying the colour of the piece that produced it.
// Row 0 is the top of the board.
type Board struct {
	rows  int
	cols  int
	cells [][]int
}

func NewBoard(rows, cols int) *Board {
	cells := make([][]int, rows)
	for i := range cells {
		cells[i] = make([]int, cols)
	}
	return &Board{rows: rows, cols: cols, cells: cells}
}

// BoardFromCells builds a board from a row-major grid, copying it.
func BoardFromCells(cells [][]int) *Board {
	rows := len(cells)
	cols := 0
	if rows > 0 {
		cols = len(cells[0])
	}
	b := NewBoard(rows, cols)
	for r := range cells {
		copy(b.cells[r], cells[r])
	}
	return b
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

func (b *Board) Get(r, c int) int {
	return b.cells[r][c]
}

func (b *Board) Set(r, c, v int) {
	b.cells[r][c] = v
}

func (b *Board) InBounds(r, c int) bool {
	return r >= 0 && r < b.rows && c >= 0 && c < b.cols
}

// IsEmpty reports whether (r, c) is inside the board and unoccupied.
func (b *Board) IsEmpty(r, c int) bool {
	return b.InBounds(r, c) && b.cells[r][c] == Empty
}

// Fits reports whether every filled cell of shape, anchored with its
// top-left corner at (row, col), lands on an empty in-bounds cell.
func (b *Board) Fits(shape Shape, row, col int) bool {
	for r := range shape {
		for c, filled := range shape[r] {
			if filled && !b.IsEmpty(row+r, col+c) {
				return false
			}
		}
	}
	return true
}

// Place writes v into every filled cell of shape at (row, col).
// Cells outside the board are skipped.
func (b *Board) Place(shape Shape, row, col, v int) {
	for r := range shape {
		for c, filled := range shape[r] {
			if filled && b.InBounds(row+r, col+c) {
				b.cells[row+r][col+c] = v
			}
		}
	}
}

// LandingRow drops shape straight down from row 0 in column col and returns
// the last row where it still fits. ok is false when it collides at row 0.
func (b *Board) LandingRow(shape Shape, col int) (row int, ok bool) {
	if !b.Fits(shape, 0, col) {
		return -1, false
	}
	for b.Fits(shape, row+1, col) {
		row++
	}
	return row, true
}

func (b *Board) rowFull(r int) bool {
	for _, v := range b.cells[r] {
		if v == Empty {
			return false
		}
	}
	return true
}

// ClearFullRows removes every fully occupied row, shifting the rows above it
// down by one and leaving an empty row at the top. Scanning runs bottom to top
// and re-checks the same index after a shift so stacked clears compact
// correctly. Returns the number of rows removed.
func (b *Board) ClearFullRows() int {
	cleared := 0
	for r := b.rows - 1; r >= 0; {
		if !b.rowFull(r) {
			r--
			continue
		}
		cleared++

		// reuse the cleared row's storage as the new top row
		top := b.cells[r]
		copy(b.cells[1:r+1], b.cells[:r])
		for c := range top {
			top[c] = Empty
		}
		b.cells[0] = top
	}
	return cleared
}

// EmptyCount returns the number of empty cells in row r.
func (b *Board) EmptyCount(r int) int {
	n := 0
	for _, v := range b.cells[r] {
		if v == Empty {
			n++
		}
	}
	return n
}

// ColumnHeight is the distance from the floor to the topmost filled cell of
// column c, or 0 for an empty column.
func (b *Board) ColumnHeight(c int) int {
	for r := 0; r < b.rows; r++ {
		if b.cells[r][c] != Empty {
			return b.rows - r
		}
	}
	return 0
}

func (b *Board) Reset() {
	for r := range b.cells {
		for c := range b.cells[r] {
			b.cells[r][c] = Empty
		}
	}
}

// Clone creates a deep copy of the board
func (b *Board) Clone() *Board {
	return BoardFromCells(b.cells)
}

// Cells returns a deep copy of the grid, safe to hand to other goroutines.
func (b *Board) Cells() [][]int {
	out := make([][]int, b.rows)
	for r := range b.cells {
		out[r] = make([]int, b.cols)
		copy(out[r], b.cells[r])
	}
	return out
}
