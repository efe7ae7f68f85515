package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/repository/postgres"
	"github.com/iamasit07/blockfall/backend/internal/repository/redis"
	"github.com/iamasit07/blockfall/backend/internal/service/bot"
	"github.com/iamasit07/blockfall/backend/internal/service/cleanup"
	"github.com/iamasit07/blockfall/backend/internal/service/game"
	"github.com/iamasit07/blockfall/backend/internal/service/leaderboard"
	transportHttp "github.com/iamasit07/blockfall/backend/internal/transport/http"
	"github.com/iamasit07/blockfall/backend/internal/transport/remote"
	"github.com/iamasit07/blockfall/backend/internal/transport/websocket"
	"github.com/iamasit07/blockfall/backend/pkg/auth"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket game server",
		RunE:  runServe,
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Persistence: postgres when configured, in-memory otherwise
	var scores leaderboard.Repository
	var pruner cleanup.ScorePruner
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := postgres.NewScoreRepo(db)
		scores, pruner = repo, repo
	} else {
		logger.Warn("DATABASE_URL not set, keeping scores in memory")
		scores = leaderboard.NewMemoryRepo(leaderboard.TopN)
	}

	// 2. Optional Redis cache
	var cache leaderboard.CacheRepository
	if client, ok := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword, logger); ok {
		defer client.Close()
		cache = redis.NewRedisCache(client)
	}

	// 3. Services
	scoreService := leaderboard.NewService(scores, cache, cfg.LeaderboardCacheTTL, logger)

	planner := bot.NewPlanner(bot.DefaultWeights(), logger)
	driverOpts := []bot.DriverOption{bot.WithLogger(logger)}
	if cfg.RemotePlannerAddr != "" {
		driverOpts = append(driverOpts, bot.WithRemote(remote.NewClient(cfg.RemotePlannerAddr), cfg.RemotePlannerTimeout))
	}
	driver := bot.NewDriver(planner, driverOpts...)

	signer := auth.NewSigner(cfg.JWTSecret, cfg.SideTokenTTL)
	sessionManager := game.NewSessionManager(cfg.Game, driver, scoreService, logger)
	gameService := game.NewService(sessionManager, signer)
	connManager := websocket.NewConnectionManager(logger)

	// 4. Background loops
	runner := game.NewRunner(sessionManager, connManager, cfg.Game.TickRate, logger)
	go runner.Run(ctx)

	cleanupWorker := cleanup.NewWorker(sessionManager, pruner, logger)
	go cleanupWorker.Start(ctx)

	// 5. HTTP API
	wsHandler := websocket.NewHandler(connManager, gameService, signer, logger)
	router := transportHttp.NewRouter(transportHttp.RouterDeps{
		GameService:    gameService,
		Leaderboard:    scoreService,
		Tokens:         signer,
		Watchers:       connManager,
		WebSocket:      wsHandler.HandleWebSocket,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	logger.Info("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	sessionManager.WaitForSaves()

	logger.Info("server exited gracefully")
	return nil
}
