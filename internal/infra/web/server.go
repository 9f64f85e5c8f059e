// Package web exposes the operator API: health, Prometheus metrics and a
// small JWT-protected surface over players, matches, stats and chat
// announcements.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain/ports/adapter"
	"telegram-match-bot/internal/infra/logging"
	"telegram-match-bot/internal/usecase"
)

type Server struct {
	playerUC usecase.PlayerUseCase
	matchUC  usecase.MatchUseCase
	statsUC  usecase.StatsUseCase
	bot      adapter.TelegramBotAdapter
	auth     *AuthManager
	secret   string
	log      *zerolog.Logger
}

func NewServer(
	playerUC usecase.PlayerUseCase,
	matchUC usecase.MatchUseCase,
	statsUC usecase.StatsUseCase,
	bot adapter.TelegramBotAdapter,
	secret string,
	secureCookies bool,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		playerUC: playerUC,
		matchUC:  matchUC,
		statsUC:  statsUC,
		bot:      bot,
		auth:     NewAuthManager(secret, secureCookies, "", 30*time.Minute),
		secret:   secret,
		log:      logger,
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/logout", s.handleLogout)
			r.Post("/announce", s.handleAnnounce)
			r.Get("/players", s.handleListPlayers)
			r.Get("/players/{id}/stats", s.handlePlayerStats)
			r.Get("/matches/active", s.handleActiveMatch)
			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})
	return r
}

// requestLogger carries the chi request id as the trace id and logs each
// request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// authMiddleware requires a valid admin JWT minted by /api/v1/login.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.secret == "" {
			s.log.Error().Msg("admin API secret is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil || claims.Role != "admin" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Msg("admin API listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
