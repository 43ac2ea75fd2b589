package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"iqra-duel-service"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres     Postgres
	Redis        Redis
	Security     Security
	Duel         Duel
	Gamification Gamification
}

// Postgres captures connection info for the question store.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache + pub/sub configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
}

// Duel groups live duel gameplay defaults.
type Duel struct {
	QuestionCount        int           `env:"DUEL_QUESTION_COUNT" envDefault:"15"`
	QuestionTimeLimit    time.Duration `env:"DUEL_QUESTION_SECONDS" envDefault:"30s"`
	ReadinessTimeout     time.Duration `env:"DUEL_READINESS_TIMEOUT" envDefault:"10s"`
	ReviewDelay          time.Duration `env:"DUEL_REVIEW_DELAY" envDefault:"3s"`
	PointsPerCorrect     int           `env:"DUEL_POINTS_PER_CORRECT" envDefault:"10"`
	QuestionPoolCacheTTL time.Duration `env:"DUEL_POOL_CACHE_TTL" envDefault:"5m"`
}

// Gamification governs the duel outcome collaborators.
type Gamification struct {
	WinnerBonusXP int    `env:"DUEL_WINNER_BONUS_XP" envDefault:"50"`
	EloKFactor    int    `env:"DUEL_ELO_K_FACTOR" envDefault:"32"`
	EventsChannel string `env:"DUEL_EVENTS_CHANNEL" envDefault:"duel:events"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
