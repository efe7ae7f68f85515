package domain

// Action is a single player input applied to a side's active piece or session.
type Action string

const (
	ActionLeft    Action = "left"
	ActionRight   Action = "right"
	ActionRotate  Action = "rotate"
	ActionDown    Action = "down"
	ActionPause   Action = "pause"
	ActionResume  Action = "resume"
	ActionRestart Action = "restart"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionLeft, ActionRight, ActionRotate, ActionDown, ActionPause, ActionResume, ActionRestart:
		return a, nil
	}
	return "", ErrUnknownAction
}

// ClientMessage is sent by WebSocket clients.
type ClientMessage struct {
	Type    string `json:"type"`
	Token   string `json:"token,omitempty"`
	MatchID string `json:"matchId,omitempty"`
	Action  string `json:"action,omitempty"`
}

// ServerMessage is pushed to WebSocket clients.
type ServerMessage struct {
	Type      string     `json:"type"`
	Message   string     `json:"message,omitempty"`
	MatchID   string     `json:"matchId,omitempty"`
	Side      *int       `json:"side,omitempty"`
	Snapshots []Snapshot `json:"snapshots,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
