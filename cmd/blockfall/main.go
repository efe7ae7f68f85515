package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blockfall",
	Short: "Falling-block game server and placement planner",
	Long: `blockfall runs falling-block matches for human and planner-driven players.

Examples:
  blockfall serve
  blockfall planner --addr :3000
  blockfall simulate --seed 7 --pieces 500`,
	SilenceUsage: true,
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
