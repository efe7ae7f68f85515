package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/service/game"
	"github.com/iamasit07/blockfall/backend/internal/service/leaderboard"
	"github.com/iamasit07/blockfall/backend/internal/transport/http/middleware"
)

type RouterDeps struct {
	GameService    *game.Service
	Leaderboard    *leaderboard.Service
	Tokens         middleware.TokenValidator
	Watchers       WatcherCounter
	WebSocket      http.HandlerFunc // Optional, can be nil
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	matchHandler := NewMatchHandler(deps.GameService, deps.Watchers)
	leaderboardHandler := NewLeaderboardHandler(deps.Leaderboard)

	router := gin.New()
	router.Use(middleware.RequestLogger(deps.Logger), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins, deps.Logger))

	router.GET("/health", Health)
	router.GET("/api/leaderboard", leaderboardHandler.Top)

	router.POST("/api/matches", matchHandler.CreateMatch)
	router.GET("/api/matches", matchHandler.ListMatches)
	router.GET("/api/matches/:id", matchHandler.GetMatch)

	// Side-token protected routes
	protected := router.Group("/api/matches/:id")
	protected.Use(middleware.SideAuthMiddleware(deps.Tokens))
	{
		protected.POST("/input", matchHandler.Input)
	}

	// WebSocket Route (auth handled inside the WS handler itself)
	if deps.WebSocket != nil {
		router.GET("/ws", gin.WrapF(deps.WebSocket))
	}

	return router
}
