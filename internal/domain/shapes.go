package domain

// Shape is an occupancy grid trimmed to the piece's bounding box.
// Shape[r][c] is true when the cell at row r, column c of the box is filled.
type Shape [][]bool

func (s Shape) Height() int {
	return len(s)
}

func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Ints renders the shape as a 0/1 matrix, the form used on the wire.
func (s Shape) Ints() [][]int {
	out := make([][]int, len(s))
	for r := range s {
		out[r] = make([]int, len(s[r]))
		for c, filled := range s[r] {
			if filled {
				out[r][c] = 1
			}
		}
	}
	return out
}

// ShapeFromInts converts a 0/1 (or colour-tagged) matrix into a Shape.
func ShapeFromInts(m [][]int) Shape {
	out := make(Shape, len(m))
	for r := range m {
		out[r] = make([]bool, len(m[r]))
		for c, v := range m[r] {
			out[r][c] = v != 0
		}
	}
	return out
}

func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if len(s[r]) != len(other[r]) {
			return false
		}
		for c := range s[r] {
			if s[r][c] != other[r][c] {
				return false
			}
		}
	}
	return true
}

// rotateCW turns a shape a quarter turn clockwise.
func rotateCW(s Shape) Shape {
	h, w := s.Height(), s.Width()
	out := make(Shape, w)
	for r := range out {
		out[r] = make([]bool, h)
	}
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			out[c][h-1-r] = s[r][c]
		}
	}
	return out
}

type catalogEntry struct {
	rotations []Shape
	color     int
}

// MaxShapeWidth is the widest bounding box of any rotation of any kind.
const MaxShapeWidth = 4

var catalog [KindCount]catalogEntry

func init() {
	spawn := [KindCount]struct {
		rows  []string
		count int
	}{
		KindI: {[]string{"####"}, 2},
		KindO: {[]string{"##", "##"}, 1},
		KindT: {[]string{".#.", "###"}, 4},
		KindS: {[]string{".##", "##."}, 2},
		KindZ: {[]string{"##.", ".##"}, 2},
		KindJ: {[]string{"#..", "###"}, 4},
		KindL: {[]string{"..#", "###"}, 4},
	}

	for k, def := range spawn {
		base := make(Shape, len(def.rows))
		for r, line := range def.rows {
			base[r] = make([]bool, len(line))
			for c, ch := range line {
				base[r][c] = ch == '#'
			}
		}

		rotations := make([]Shape, def.count)
		rotations[0] = base
		for i := 1; i < def.count; i++ {
			rotations[i] = rotateCW(rotations[i-1])
		}
		catalog[k] = catalogEntry{rotations: rotations, color: k + 1}
	}
}

// RotationCount returns the number of distinct orientations of a kind.
func RotationCount(k Kind) int {
	return len(catalog[k].rotations)
}

// NormalizeRotation wraps any rotation index into [0, RotationCount(k)).
func NormalizeRotation(k Kind, rotation int) int {
	n := RotationCount(k)
	return ((rotation % n) + n) % n
}

// ShapeOf returns the occupancy grid of a kind at a rotation index.
// The returned shape is shared and must not be modified.
func ShapeOf(k Kind, rotation int) Shape {
	return catalog[k].rotations[NormalizeRotation(k, rotation)]
}

// Color returns the cell value written into the board when a kind locks (1..7).
func Color(k Kind) int {
	return catalog[k].color
}

// KindFromShape finds the kind and rotation whose grid equals s.
func KindFromShape(s Shape) (Kind, int, error) {
	for k := Kind(0); k < KindCount; k++ {
		for rot, candidate := range catalog[k].rotations {
			if candidate.Equal(s) {
				return k, rot, nil
			}
		}
	}
	return 0, 0, ErrUnknownShape
}

// SpawnColumn clamps the configured spawn column so the kind's spawn
// orientation fits within the board width.
func SpawnColumn(k Kind, configured, cols int) int {
	maxCol := cols - ShapeOf(k, 0).Width()
	if configured > maxCol {
		configured = maxCol
	}
	if configured < 0 {
		configured = 0
	}
	return configured
}
