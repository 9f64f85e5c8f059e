package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
)

var _ repository.CooldownRepository = (*CooldownRepo)(nil)

type CooldownRepo struct {
	pool *pgxpool.Pool
}

func NewCooldownRepo(pool *pgxpool.Pool) *CooldownRepo {
	return &CooldownRepo{pool: pool}
}

func (r *CooldownRepo) Set(ctx context.Context, tx repository.Tx, playerID string, until time.Time, reason string) error {
	const q = `
INSERT INTO cooldowns (player_id, cooldown_end, reason)
VALUES ($1,$2,$3)
ON CONFLICT (player_id) DO UPDATE SET
  cooldown_end=EXCLUDED.cooldown_end, reason=EXCLUDED.reason;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, playerID, until, reason)
	return err
}

func (r *CooldownRepo) Active(ctx context.Context, tx repository.Tx, playerID string) (*model.Cooldown, error) {
	const q = `
SELECT player_id, cooldown_end, COALESCE(reason, '')
  FROM cooldowns
 WHERE player_id = $1 AND cooldown_end > CURRENT_TIMESTAMP;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var c model.Cooldown
	row := ex.QueryRow(ctx, q, playerID)
	if err := row.Scan(&c.PlayerID, &c.End, &c.Reason); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CooldownRepo) DeleteExpired(ctx context.Context, tx repository.Tx) (int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM cooldowns WHERE cooldown_end <= CURRENT_TIMESTAMP;`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
