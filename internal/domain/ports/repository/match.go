package repository

import (
	"context"
	"time"

	"telegram-match-bot/internal/domain/model"
)

type MatchRepository interface {
	Create(ctx context.Context, tx Tx, m *model.Match) error
	// FindActive returns the most recently opened active match, or
	// domain.ErrNotFound when none is open.
	FindActive(ctx context.Context, tx Tx) (*model.Match, error)
	Deactivate(ctx context.Context, tx Tx, matchID string) error
	SetPinnedMessage(ctx context.Context, tx Tx, matchID string, messageID int64) error
	MarkBalanced(ctx context.Context, tx Tx, matchID string, at time.Time) error

	// AddPlayer reports false when the player was already in the pool.
	AddPlayer(ctx context.Context, tx Tx, matchID, playerID string) (bool, error)
	// RemovePlayer reports false when the player was not in the pool.
	RemovePlayer(ctx context.Context, tx Tx, matchID, playerID string) (bool, error)
	Players(ctx context.Context, tx Tx, matchID string) ([]*model.Player, error)
	CountPlayers(ctx context.Context, tx Tx, matchID string) (int, error)

	SaveBalance(ctx context.Context, tx Tx, b *model.TeamBalance) error
}
