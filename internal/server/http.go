package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Suyash56/quizzy-pop/internal/auth"
	"github.com/Suyash56/quizzy-pop/internal/config"
	"github.com/Suyash56/quizzy-pop/internal/leaderboard"
	"github.com/Suyash56/quizzy-pop/internal/logging"
	"github.com/Suyash56/quizzy-pop/internal/session"
)

// Handlers collects the feature handlers the server wires up.
type Handlers struct {
	Auth        *auth.HTTPHandlers
	Session     *session.HTTPHandlers
	Leaderboard *leaderboard.HTTPHandler
	WS          http.HandlerFunc
}

// NewHTTPServer wires routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, authSvc *auth.Service, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, rdb); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Host identity
	mux.HandleFunc("/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("/v1/auth/login", h.Auth.Login)
	mux.Handle("/v1/hosts/me", auth.RequireHost(http.HandlerFunc(h.Auth.Me)))

	// Session lifecycle (host mutations behind RequireHost)
	mux.Handle("/v1/sessions", auth.RequireHost(http.HandlerFunc(h.Session.Create)))
	mux.Handle("/v1/sessions/{id}/start", auth.RequireHost(http.HandlerFunc(h.Session.Start)))
	mux.Handle("/v1/sessions/{id}/advance", auth.RequireHost(http.HandlerFunc(h.Session.Advance)))
	mux.Handle("/v1/sessions/{id}/complete", auth.RequireHost(http.HandlerFunc(h.Session.Complete)))
	mux.Handle("/v1/sessions/{id}/restart", auth.RequireHost(http.HandlerFunc(h.Session.Restart)))

	// Participant-facing, anonymous
	mux.HandleFunc("/v1/sessions/{id}", h.Session.Get)
	mux.HandleFunc("/v1/sessions/code/{code}", h.Session.GetByCode)
	mux.HandleFunc("/v1/sessions/{id}/join", h.Session.Join)
	mux.HandleFunc("/v1/sessions/{id}/answers", h.Session.SubmitAnswer)
	mux.HandleFunc("/v1/sessions/{id}/participants", h.Session.ListParticipants)
	mux.HandleFunc("/v1/sessions/{id}/questions/{questionId}/submissions", h.Session.ListSubmissions)
	mux.HandleFunc("/v1/sessions/{id}/leaderboard", h.Leaderboard.HandleGet)

	// Realtime watchers
	if h.WS != nil {
		mux.HandleFunc("/ws/sessions", h.WS)
	}

	handler := corsMiddleware(cfg.CORS)(auth.Middleware(authSvc, logger)(mux))

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := origins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
					if cfg.AllowCredentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
				}
			}
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
