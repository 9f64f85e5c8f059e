package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"telegram-match-bot/internal/application"
	"telegram-match-bot/internal/config"
	"telegram-match-bot/internal/domain/ports/adapter"
	tele "telegram-match-bot/internal/infra/adapters/telegram"
	"telegram-match-bot/internal/infra/db/bootstrap"
	pg "telegram-match-bot/internal/infra/db/postgres"
	"telegram-match-bot/internal/infra/logging"
	"telegram-match-bot/internal/infra/metrics"
	red "telegram-match-bot/internal/infra/redis"
	"telegram-match-bot/internal/infra/sched"
	"telegram-match-bot/internal/infra/web"
	"telegram-match-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	var (
		cfgPath string
		devMode bool
	)

	root := &cobra.Command{
		Use:           "bot",
		Short:         "CS:GO match recruiting and team balancing Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath, devMode)
		},
	}
	root.Flags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	root.Flags().BoolVar(&devMode, "dev", false, "developer mode: console logs, noop Telegram adapter without a token")

	if err := root.Execute(); err != nil {
		log.Fatalf("bot: %v", err)
	}
}

func run(cfgPath string, devMode bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}
	if cfg.Bot.Token == "" && !cfg.Runtime.Dev {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.ConnectWithRetry(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, 10, 3*time.Second)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// Schema is idempotent, so applying it at startup is safe.
	if err := bootstrap.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	playerRepo := pg.NewPlayerRepo(pool)
	matchRepo := pg.NewMatchRepo(pool)
	statsRepo := pg.NewStatsRepo(pool)
	cooldownRepo := pg.NewCooldownRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Use cases ----
	playerUC := usecase.NewPlayerUseCase(playerRepo, txm, logger)
	matchUC := usecase.NewMatchUseCase(matchRepo, cooldownRepo, txm, cfg.Match.PoolSize, cfg.Match.LeaveCooldown, logger)
	statsUC := usecase.NewStatsUseCase(playerRepo, statsRepo, logger)
	balanceUC := usecase.NewBalanceUseCase(matchRepo, statsRepo, txm, locker, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(playerUC, matchUC, statsUC, balanceUC, cfg.Match.PoolSize)

	// ---- Telegram ----
	var botPort adapter.TelegramBotAdapter
	if cfg.Bot.Token != "" {
		botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		botPort = botAdapter
		go func() {
			if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
				cancel()
			}
		}()
	} else {
		botPort = tele.NewNoopBotAdapter(logger)
		logger.Warn().Msg("no bot token: Telegram polling disabled, using the noop adapter")
	}

	// ---- Cooldown sweeper ----
	sweeper := sched.NewCooldownSweeper(cfg.Match.SweepInterval, matchUC, logger)
	go func() {
		if err := sweeper.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("cooldown sweeper stopped")
		}
	}()

	// ---- Admin API ----
	srv := web.NewServer(playerUC, matchUC, statsUC, botPort, cfg.Admin.JWTSecret, !cfg.Runtime.Dev, logger)
	if err := srv.Run(ctx, fmt.Sprintf(":%d", cfg.Admin.Port)); err != nil && ctx.Err() == nil {
		return fmt.Errorf("admin api: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
