package domain

import "time"

// PieceView is the rendering-facing description of the falling piece.
type PieceView struct {
	Kind     string  `json:"kind"`
	Rotation int     `json:"rotation"`
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	Shape    [][]int `json:"shape"`
	Color    int     `json:"color"`
}

func NewPieceView(s PieceState) *PieceView {
	return &PieceView{
		Kind:     s.Kind.String(),
		Rotation: s.Rotation,
		Row:      s.Row,
		Col:      s.Col,
		Shape:    s.Shape().Ints(),
		Color:    Color(s.Kind),
	}
}

// Snapshot is everything a HUD or renderer needs from one board.
type Snapshot struct {
	Side       int        `json:"side"`
	Generation uint64     `json:"generation"`
	Board      [][]int    `json:"board"`
	Active     *PieceView `json:"active,omitempty"`
	Next       string     `json:"next"`
	Score      int        `json:"score"`
	Lines      int        `json:"lines"`
	Pieces     int        `json:"pieces"`
	ElapsedMs  int64      `json:"elapsedMs"`
	Paused     bool       `json:"paused"`
	GameOver   bool       `json:"gameOver"`
	AI         bool       `json:"ai"`
}

// ScoreEntry is one finished run as recorded on the leaderboard.
type ScoreEntry struct {
	Name      string        `json:"name"`
	Score     int           `json:"score"`
	Lines     int           `json:"lines"`
	Pieces    int           `json:"pieces"`
	Duration  time.Duration `json:"duration"`
	MatchID   string        `json:"matchId"`
	AI        bool          `json:"ai"`
	CreatedAt time.Time     `json:"createdAt"`
}
