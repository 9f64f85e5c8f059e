package repository

import (
	"context"
	"time"

	"telegram-match-bot/internal/domain/model"
)

type CooldownRepository interface {
	// Set upserts the player's cooldown; a later Set overwrites an earlier one.
	Set(ctx context.Context, tx Tx, playerID string, until time.Time, reason string) error
	// Active returns the player's unexpired cooldown or nil.
	Active(ctx context.Context, tx Tx, playerID string) (*model.Cooldown, error)
	// DeleteExpired removes expired rows and reports how many were deleted.
	DeleteExpired(ctx context.Context, tx Tx) (int64, error)
}
