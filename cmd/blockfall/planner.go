package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/service/bot"
	"github.com/iamasit07/blockfall/backend/internal/transport/remote"
)

var plannerAddr string

func init() {
	plannerCmd := &cobra.Command{
		Use:   "planner",
		Short: "Serve placements over the line-delimited JSON planner protocol",
		RunE:  runPlanner,
	}

	plannerCmd.Flags().StringVar(&plannerAddr, "addr", "", "Listen address (defaults to PLANNER_ADDR)")

	rootCmd.AddCommand(plannerCmd)
}

func runPlanner(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addr := plannerAddr
	if addr == "" {
		addr = cfg.PlannerAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := remote.NewServer(bot.NewPlanner(bot.DefaultWeights(), logger), cfg.Game.SpawnCol, logger)
	return server.ListenAndServe(ctx, addr)
}
