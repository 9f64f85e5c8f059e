package usecase

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
	"telegram-match-bot/internal/infra/logging"
	"telegram-match-bot/internal/infra/metrics"
)

// Compile-time check
var _ PlayerUseCase = (*playerUC)(nil)

// PlayerUseCase exposes player registration and lookup used by bot/admin flows.
type PlayerUseCase interface {
	RegisterOrFetch(ctx context.Context, tgID int64, username, firstName string) (*model.Player, bool, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.Player, error)
	GetByUsername(ctx context.Context, username string) (*model.Player, error)
	ListAll(ctx context.Context) ([]*model.Player, error)
	Count(ctx context.Context) (int, error)
}

type playerUC struct {
	players repository.PlayerRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewPlayerUseCase(players repository.PlayerRepository, tm repository.TransactionManager, logger *zerolog.Logger) *playerUC {
	return &playerUC{players: players, tm: tm, log: logger}
}

// RegisterOrFetch returns the existing player for the Telegram account or
// creates a new one. The second return value reports whether a new player was
// created. Find and save run in one serializable transaction so two parallel
// /register messages cannot create duplicates.
func (u *playerUC) RegisterOrFetch(ctx context.Context, tgID int64, username, firstName string) (*model.Player, bool, error) {
	defer logging.TraceDuration(u.log, "PlayerUC.RegisterOrFetch")()

	var (
		player  *model.Player
		created bool
	)
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.players.FindByTelegramID(ctx, tx, tgID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if p != nil {
			if (username != "" && p.Username != username) || (firstName != "" && p.FirstName != firstName) {
				if username != "" {
					p.Username = username
				}
				if firstName != "" {
					p.FirstName = firstName
				}
				p.Touch()
				if err := u.players.Save(ctx, tx, p); err != nil {
					return err
				}
			}
			player = p
			return nil
		}

		np, err := model.NewPlayer("", tgID, username, firstName)
		if err != nil {
			return err
		}
		if err := u.players.Save(ctx, tx, np); err != nil {
			return err
		}
		player = np
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		metrics.IncPlayersRegistered()
		u.log.Info().Int64("tg_id", tgID).Str("player_id", player.ID).Msg("player registered")
	}
	return player, created, nil
}

func (u *playerUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.Player, error) {
	defer logging.TraceDuration(u.log, "PlayerUC.GetByTelegramID")()
	return u.players.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *playerUC) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	defer logging.TraceDuration(u.log, "PlayerUC.GetByUsername")()
	return u.players.FindByUsername(ctx, repository.NoTX, username)
}

func (u *playerUC) ListAll(ctx context.Context) ([]*model.Player, error) {
	defer logging.TraceDuration(u.log, "PlayerUC.ListAll")()
	return u.players.ListAll(ctx, repository.NoTX)
}

func (u *playerUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "PlayerUC.Count")()
	return u.players.Count(ctx, repository.NoTX)
}
