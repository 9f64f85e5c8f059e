package repository

import (
	"context"

	"telegram-match-bot/internal/domain/model"
)

type StatsRepository interface {
	Add(ctx context.Context, tx Tx, s *model.StatLine) error
	// Recent returns up to limit stat lines, newest first.
	Recent(ctx context.Context, tx Tx, playerID string, limit int) ([]*model.StatLine, error)
	// Averages returns zero-valued aggregates (Matches == 0) for a player
	// without history, not an error.
	Averages(ctx context.Context, tx Tx, playerID string) (*model.PlayerAverages, error)
	// AverageADRs returns per-player average ADR for the given IDs; players
	// without history are absent from the result map.
	AverageADRs(ctx context.Context, tx Tx, playerIDs []string) (map[string]float64, error)
	Leaderboard(ctx context.Context, tx Tx, limit int) ([]*model.LeaderboardRow, error)
}
