package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
	"telegram-match-bot/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// PlayerSummary bundles a player with their aggregated history and a few
// recent lines for display.
type PlayerSummary struct {
	Player   *model.Player
	Averages *model.PlayerAverages
	Recent   []*model.StatLine
}

// StatsUseCase records and reads per-match performance data.
type StatsUseCase interface {
	// AddForUsername records a stat line for the player with the given
	// username (leading @ is accepted).
	AddForUsername(ctx context.Context, username string, kills, deaths, assists int, adr float64, mapName string) (*model.StatLine, error)
	Summary(ctx context.Context, playerID string) (*PlayerSummary, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardRow, error)
}

type statsUC struct {
	players repository.PlayerRepository
	stats   repository.StatsRepository
	log     *zerolog.Logger
}

func NewStatsUseCase(players repository.PlayerRepository, stats repository.StatsRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{players: players, stats: stats, log: logger}
}

func (u *statsUC) AddForUsername(ctx context.Context, username string, kills, deaths, assists int, adr float64, mapName string) (*model.StatLine, error) {
	defer logging.TraceDuration(u.log, "StatsUC.AddForUsername")()

	username = strings.TrimPrefix(username, "@")
	p, err := u.players.FindByUsername(ctx, repository.NoTX, username)
	if err != nil {
		return nil, err
	}
	line, err := model.NewStatLine(p.ID, kills, deaths, assists, adr, mapName, "")
	if err != nil {
		return nil, err
	}
	if err := u.stats.Add(ctx, repository.NoTX, line); err != nil {
		return nil, err
	}
	u.log.Info().Str("player_id", p.ID).Float64("adr", adr).Float64("rating", line.Rating).Msg("stat line recorded")
	return line, nil
}

func (u *statsUC) Summary(ctx context.Context, playerID string) (*PlayerSummary, error) {
	defer logging.TraceDuration(u.log, "StatsUC.Summary")()

	p, err := u.players.FindByID(ctx, repository.NoTX, playerID)
	if err != nil {
		return nil, err
	}
	avg, err := u.stats.Averages(ctx, repository.NoTX, playerID)
	if err != nil {
		return nil, err
	}
	recent, err := u.stats.Recent(ctx, repository.NoTX, playerID, 5)
	if err != nil {
		return nil, err
	}
	return &PlayerSummary{Player: p, Averages: avg, Recent: recent}, nil
}

func (u *statsUC) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardRow, error) {
	defer logging.TraceDuration(u.log, "StatsUC.Leaderboard")()
	if limit <= 0 {
		limit = 10
	}
	return u.stats.Leaderboard(ctx, repository.NoTX, limit)
}
