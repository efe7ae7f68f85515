package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/service/bot"
	"github.com/iamasit07/blockfall/backend/internal/service/game"
	"github.com/iamasit07/blockfall/backend/pkg/uid"
)

var (
	simSeed    uint64
	simPieces  int
	simPlayers int
)

func init() {
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play planner-driven games headlessly on a virtual clock",
		Long: `Play one planner-driven match without a server and print the result.
The same seed always produces the same game.

Examples:
  blockfall simulate --seed 7
  blockfall simulate --seed 7 --pieces 2000 --players 2`,
		RunE: runSimulate,
	}

	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 1, "Piece sequence seed")
	simulateCmd.Flags().IntVarP(&simPieces, "pieces", "n", 500, "Stop once every side has spawned this many pieces")
	simulateCmd.Flags().IntVar(&simPlayers, "players", 1, "Number of planner-driven sides (1 or 2)")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	gameCfg := cfg.Game
	gameCfg.Players = simPlayers
	gameCfg.AIPlayers = [2]bool{true, true}

	driver := bot.NewDriver(bot.NewPlanner(bot.DefaultWeights(), logger), bot.WithLogger(logger))
	match, err := game.NewMatch(uid.GenerateMatchID(), gameCfg, game.MatchOptions{
		Seed:       simSeed,
		Controller: driver,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer match.Close()

	step := time.Second / time.Duration(max(1, gameCfg.TickRate))
	var now int64
	for !match.Finished() && !reachedBudget(match, simPieces) {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		now += int64(step)
		match.Tick(cmd.Context(), now)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seed %d, %s of play\n", simSeed, time.Duration(now).Round(time.Second))
	for _, snap := range match.Snapshots() {
		fmt.Fprintf(out, "side %d: score %d, lines %d, pieces %d, game over %t\n",
			snap.Side, snap.Score, snap.Lines, snap.Pieces, snap.GameOver)
	}
	return nil
}

func reachedBudget(m *game.Match, pieces int) bool {
	for _, snap := range m.Snapshots() {
		if !snap.GameOver && snap.Pieces < pieces {
			return false
		}
	}
	return true
}
