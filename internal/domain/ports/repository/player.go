package repository

import (
	"context"

	"telegram-match-bot/internal/domain/model"
)

type PlayerRepository interface {
	// Save upserts by ID; the telegram_id unique constraint makes a second
	// registration of the same account an update, not a duplicate.
	Save(ctx context.Context, tx Tx, p *model.Player) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Player, error)
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.Player, error)
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.Player, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Player, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
