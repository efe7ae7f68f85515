package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

// GameConfig holds the board and pacing settings every session is built from.
// It is passed by value; sessions never read process-wide state.
type GameConfig struct {
	Rows         int
	Cols         int
	GravityCPS   float64 // cells per second
	SpawnCol     int
	Players      int
	AIPlayers    [2]bool
	TickRate     int           // ticks per second delivered by the runner
	MaxTickDelta time.Duration // larger clock gaps are clamped to this
}

// DefaultGameConfig matches the classic 10x20 board.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Rows:         20,
		Cols:         10,
		GravityCPS:   2.0,
		SpawnCol:     3,
		Players:      1,
		TickRate:     60,
		MaxTickDelta: 250 * time.Millisecond,
	}
}

// Validate only rejects boards no piece could be placed on; it never clamps.
func (g GameConfig) Validate() error {
	if g.Rows <= 0 || g.Cols <= 0 {
		return domain.ErrInvalidDimensions
	}
	if g.Cols < domain.MaxShapeWidth {
		return domain.ErrBoardTooNarrow
	}
	if g.Players != 1 && g.Players != 2 {
		return domain.ErrInvalidPlayers
	}
	return nil
}

type Config struct {
	Port                 string
	PlannerAddr          string
	RemotePlannerAddr    string
	RemotePlannerTimeout time.Duration
	AllowedOrigins       []string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	RedisURL             string
	RedisPassword        string
	LeaderboardCacheTTL  time.Duration
	JWTSecret            string
	SideTokenTTL         time.Duration
	LogLevel             string
	LogFormat            string
	Game                 GameConfig
}

func LoadConfig() Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	allowedOrigins := []string{
		"http://localhost:5173", // Local development
	}
	if extras := GetEnv("ALLOWED_ORIGINS", ""); extras != "" {
		for _, origin := range strings.Split(extras, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	game := DefaultGameConfig()
	game.Rows = GetEnvAsInt("BOARD_ROWS", game.Rows)
	game.Cols = GetEnvAsInt("BOARD_COLS", game.Cols)
	game.GravityCPS = GetEnvAsFloat("GRAVITY_CPS", game.GravityCPS)
	game.SpawnCol = GetEnvAsInt("SPAWN_COL", game.SpawnCol)
	game.Players = GetEnvAsInt("PLAYERS", game.Players)
	game.AIPlayers[0] = GetEnvAsBool("AI_P1", false)
	game.AIPlayers[1] = GetEnvAsBool("AI_P2", false)
	game.TickRate = GetEnvAsInt("TICK_RATE", game.TickRate)
	game.MaxTickDelta = time.Duration(GetEnvAsInt("MAX_TICK_DELTA_MS", 250)) * time.Millisecond

	return Config{
		Port:                 port,
		PlannerAddr:          GetEnv("PLANNER_ADDR", ":3000"),
		RemotePlannerAddr:    GetEnv("REMOTE_PLANNER_ADDR", ""),
		RemotePlannerTimeout: time.Duration(GetEnvAsInt("REMOTE_PLANNER_TIMEOUT_MS", 5000)) * time.Millisecond,
		AllowedOrigins:       allowedOrigins,
		DatabaseURL:          GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", "")),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		RedisURL:             GetEnv("REDIS_URL", ""),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		LeaderboardCacheTTL:  time.Duration(GetEnvAsInt("LEADERBOARD_CACHE_SECONDS", 30)) * time.Second,
		JWTSecret:            GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		SideTokenTTL:         time.Duration(GetEnvAsInt("SIDE_TOKEN_TTL_MINUTES", 120)) * time.Minute,
		LogLevel:             GetEnv("LOG_LEVEL", "info"),
		LogFormat:            GetEnv("LOG_FORMAT", "json"),
		Game:                 game,
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s: %s, using default: %g", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s: %s, using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
