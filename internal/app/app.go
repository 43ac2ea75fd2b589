package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iamnoseh/IQRA-sub000/internal/auth"
	"github.com/iamnoseh/IQRA-sub000/internal/config"
	"github.com/iamnoseh/IQRA-sub000/internal/db/repository"
	"github.com/iamnoseh/IQRA-sub000/internal/duel"
	"github.com/iamnoseh/IQRA-sub000/internal/duel/grading"
	"github.com/iamnoseh/IQRA-sub000/internal/gamification"
	"github.com/iamnoseh/IQRA-sub000/internal/logging"
	"github.com/iamnoseh/IQRA-sub000/internal/question"
	"github.com/iamnoseh/IQRA-sub000/internal/server"
	ws "github.com/iamnoseh/IQRA-sub000/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps configs, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	verifier := auth.NewVerifier([]byte(cfg.Security.JWTSecret))

	questionRepo := repository.NewQuestionRepository(pool)
	questionCache := question.NewCache(redisClient, cfg.Duel.QuestionPoolCacheTTL)
	questionSvc := question.NewService(questionRepo, questionCache)

	gamificationSvc := gamification.NewService(redisClient, cfg.Gamification.EloKFactor, cfg.Gamification.EventsChannel)
	outcomePublisher := gamification.NewPublisher(gamificationSvc, cfg.Gamification.WinnerBonusXP, logger)

	wsHub := ws.NewHub(logger)
	registry := duel.NewRegistry()
	matchmaker := duel.NewMatchmaker(registry, logger)
	grader := grading.NewEngine(grading.Config{PointsPerCorrect: cfg.Duel.PointsPerCorrect})
	broadcaster := duel.NewBroadcaster(wsHub, logger)

	coordinator := duel.NewCoordinator(registry, questionSvc, grader, outcomePublisher, broadcaster, duel.Config{
		QuestionCount:     cfg.Duel.QuestionCount,
		QuestionTimeLimit: cfg.Duel.QuestionTimeLimit,
		ReadinessTimeout:  cfg.Duel.ReadinessTimeout,
		ReviewDelay:       cfg.Duel.ReviewDelay,
	}, logger)

	duelHandler := duel.NewHandler(matchmaker, coordinator, wsHub, logger)
	duelWSHandler := duel.NewWSHandler(duelHandler, verifier)
	leaderboardHandler := gamification.NewLeaderboardHandler(gamificationSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, duelWSHandler, leaderboardHandler.HandleGet)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
