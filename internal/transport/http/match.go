package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blockfall/backend/internal/domain"
	"github.com/iamasit07/blockfall/backend/internal/service/game"
	"github.com/iamasit07/blockfall/backend/internal/transport/http/middleware"
	"github.com/iamasit07/blockfall/backend/pkg/uid"
)

// WatcherCounter reports how many live connections follow a match.
type WatcherCounter interface {
	Watchers(matchID string) int
}

type MatchHandler struct {
	GameService *game.Service
	Watchers    WatcherCounter // Optional, can be nil
}

func NewMatchHandler(gs *game.Service, watchers WatcherCounter) *MatchHandler {
	return &MatchHandler{GameService: gs, Watchers: watchers}
}

type createMatchResponse struct {
	MatchID   string            `json:"matchId"`
	Seed      uint64            `json:"seed"`
	Sides     []game.SideToken  `json:"sides"`
	Snapshots []domain.Snapshot `json:"snapshots"`
}

type matchResponse struct {
	MatchID   string            `json:"matchId"`
	Snapshots []domain.Snapshot `json:"snapshots"`
}

type liveMatchResponse struct {
	MatchID   string         `json:"matchId"`
	Players   []sideResponse `json:"players"`
	Watchers  int            `json:"watchers"`
	Finished  bool           `json:"finished"`
	StartedAt string         `json:"startedAt"`
}

type sideResponse struct {
	Side     int    `json:"side"`
	Name     string `json:"name"`
	AI       bool   `json:"ai"`
	Score    int    `json:"score"`
	GameOver bool   `json:"gameOver"`
}

type inputRequest struct {
	Action string `json:"action" binding:"required"`
}

// CreateMatch starts a match; an empty body uses the server defaults.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req game.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	match, tokens, err := h.GameService.CreateMatch(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createMatchResponse{
		MatchID:   match.ID,
		Seed:      match.Seed(),
		Sides:     tokens,
		Snapshots: match.Snapshots(),
	})
}

func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID := c.Param("id")
	if !uid.IsMatchID(matchID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	snaps, err := h.GameService.Snapshots(matchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matchResponse{MatchID: matchID, Snapshots: snaps})
}

// ListMatches returns every live match available for spectating
func (h *MatchHandler) ListMatches(c *gin.Context) {
	matches := h.GameService.Manager.ActiveMatches()

	response := make([]liveMatchResponse, 0, len(matches))
	for _, m := range matches {
		item := liveMatchResponse{
			MatchID:   m.ID,
			Finished:  m.Finished(),
			StartedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		}
		if h.Watchers != nil {
			item.Watchers = h.Watchers.Watchers(m.ID)
		}
		for _, snap := range m.Snapshots() {
			s, _ := m.Session(snap.Side)
			item.Players = append(item.Players, sideResponse{
				Side:     snap.Side,
				Name:     s.Name(),
				AI:       snap.AI,
				Score:    snap.Score,
				GameOver: snap.GameOver,
			})
		}
		response = append(response, item)
	}

	c.JSON(http.StatusOK, response)
}

// Input applies one action for the side named in the bearer token.
func (h *MatchHandler) Input(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	action, err := domain.ParseAction(req.Action)
	if err != nil {
		respondError(c, err)
		return
	}

	matchID := c.GetString(middleware.ContextMatchID)
	side := c.GetInt(middleware.ContextSide)

	snaps, err := h.GameService.ApplyInput(matchID, side, action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matchResponse{MatchID: matchID, Snapshots: snaps})
}
