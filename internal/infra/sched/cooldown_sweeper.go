package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-match-bot/internal/usecase"
)

// CooldownSweeper periodically deletes expired cooldown rows so the table does
// not accumulate garbage between matches.
type CooldownSweeper struct {
	interval time.Duration
	matchUC  usecase.MatchUseCase
	log      *zerolog.Logger
}

func NewCooldownSweeper(interval time.Duration, matchUC usecase.MatchUseCase, logger *zerolog.Logger) *CooldownSweeper {
	compLog := logger.With().Str("component", "CooldownSweeper").Logger()
	return &CooldownSweeper{
		interval: interval,
		matchUC:  matchUC,
		log:      &compLog,
	}
}

func (w *CooldownSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting cooldown sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping cooldown sweeper")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.matchUC.SweepCooldowns(ctx); err != nil {
				w.log.Error().Err(err).Msg("cooldown sweep error")
			}
		}
	}
}
