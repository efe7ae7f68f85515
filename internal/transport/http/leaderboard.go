package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blockfall/backend/internal/service/leaderboard"
)

type LeaderboardHandler struct {
	Leaderboard *leaderboard.Service
}

func NewLeaderboardHandler(lb *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{Leaderboard: lb}
}

func (h *LeaderboardHandler) Top(c *gin.Context) {
	entries, err := h.Leaderboard.Top(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
