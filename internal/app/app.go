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

	"github.com/Suyash56/quizzy-pop/internal/auth"
	"github.com/Suyash56/quizzy-pop/internal/auth/jwt"
	"github.com/Suyash56/quizzy-pop/internal/config"
	"github.com/Suyash56/quizzy-pop/internal/db/repository"
	"github.com/Suyash56/quizzy-pop/internal/feed"
	"github.com/Suyash56/quizzy-pop/internal/leaderboard"
	"github.com/Suyash56/quizzy-pop/internal/logging"
	"github.com/Suyash56/quizzy-pop/internal/server"
	"github.com/Suyash56/quizzy-pop/internal/session"
	ws "github.com/Suyash56/quizzy-pop/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	broadcaster *feed.Broadcaster
	bgCancels   []context.CancelFunc
}

// New bootstraps config, logger, Postgres, Redis, services and the HTTP
// server.
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

	hostRepo := repository.NewHostRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)

	tokenMgr := jwt.NewManager(jwt.Config{
		Secret: []byte(cfg.Security.JWTSecret),
		TTL:    cfg.Security.AccessTokenTTL,
		Issuer: cfg.Name,
	})
	authSvc := auth.NewService(hostRepo, tokenMgr, logger)
	authHandlers := auth.NewHTTPHandlers(authSvc, logger)

	publisher := feed.NewPublisher(redisClient, cfg.Feed.Channel, logger)
	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{
		TopN:     cfg.Leaderboard.TopN,
		EntryTTL: cfg.Leaderboard.TTL,
	})

	deps := session.Deps{
		Quizzes:      quizRepo,
		Sessions:     sessionRepo,
		Participants: participantRepo,
		Submissions:  submissionRepo,
		Feed:         publisher,
		Standings:    leaderboardSvc,
	}
	sessionSvc := session.NewService(deps, logger)
	intake := session.NewIntake(deps, logger)
	sessionHandlers := session.NewHTTPHandlers(sessionSvc, intake, logger)

	lbHandler := leaderboard.NewHTTPHandler(leaderboardSvc, participantRepo, logger)

	wsHub := ws.NewHub(logger)
	broadcaster := feed.NewBroadcaster(redisClient, wsHub, cfg.Feed.Channel, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, authSvc, server.Handlers{
		Auth:        authHandlers,
		Session:     sessionHandlers,
		Leaderboard: lbHandler,
		WS:          server.NewWSHandler(wsHub, logger),
	})

	return &Application{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redis:       redisClient,
		http:        apiServer,
		broadcaster: broadcaster,
		bgCancels:   make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

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

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go a.broadcaster.Run(bgCtx)
	}
}

// Logger exposes the application logger, mainly for cmd wiring.
func (a *Application) Logger() zerolog.Logger {
	return a.logger
}
