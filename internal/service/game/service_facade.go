package game

import (
	"github.com/iamasit07/blockfall/backend/internal/domain"
)

// TokenIssuer signs the credential that authorises input on one side.
type TokenIssuer interface {
	IssueSideToken(matchID string, side int) (string, error)
}

type SideToken struct {
	Side  int    `json:"side"`
	Name  string `json:"name"`
	AI    bool   `json:"ai"`
	Token string `json:"token"`
}

// Service is the entry point for game logic (facade)
type Service struct {
	Manager *SessionManager
	tokens  TokenIssuer
}

func NewService(manager *SessionManager, tokens TokenIssuer) *Service {
	return &Service{
		Manager: manager,
		tokens:  tokens,
	}
}

// CreateMatch starts a match and issues one token per side.
func (s *Service) CreateMatch(req MatchRequest) (*Match, []SideToken, error) {
	match, err := s.Manager.CreateMatch(req)
	if err != nil {
		return nil, nil, err
	}

	sessions := match.Sessions()
	tokens := make([]SideToken, 0, len(sessions))
	for _, session := range sessions {
		token, err := s.tokens.IssueSideToken(match.ID, session.Side())
		if err != nil {
			s.Manager.RemoveMatch(match.ID)
			return nil, nil, err
		}
		tokens = append(tokens, SideToken{
			Side:  session.Side(),
			Name:  session.Name(),
			AI:    session.AI(),
			Token: token,
		})
	}
	return match, tokens, nil
}

func (s *Service) Snapshots(matchID string) ([]domain.Snapshot, error) {
	match, ok := s.Manager.GetMatch(matchID)
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return match.Snapshots(), nil
}

// ApplyInput applies an action on behalf of a side and returns the
// resulting snapshots.
func (s *Service) ApplyInput(matchID string, side int, action domain.Action) ([]domain.Snapshot, error) {
	match, ok := s.Manager.GetMatch(matchID)
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	if err := match.Apply(side, action); err != nil {
		return nil, err
	}
	return match.Snapshots(), nil
}
