package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
)

var _ repository.PlayerRepository = (*PlayerRepo)(nil)

type PlayerRepo struct {
	pool *pgxpool.Pool
}

func NewPlayerRepo(pool *pgxpool.Pool) *PlayerRepo {
	return &PlayerRepo{pool: pool}
}

func (r *PlayerRepo) Save(ctx context.Context, tx repository.Tx, p *model.Player) error {
	const q = `
INSERT INTO players (id, telegram_id, username, first_name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (telegram_id) DO UPDATE SET
  username=EXCLUDED.username, first_name=EXCLUDED.first_name, updated_at=EXCLUDED.updated_at;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, p.ID, p.TelegramID, p.Username, p.FirstName, p.CreatedAt, p.UpdatedAt)
	return err
}

const playerColumns = `id, telegram_id, username, first_name, created_at, updated_at`

func (r *PlayerRepo) findOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Player, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var p model.Player
	row := ex.QueryRow(ctx, q, args...)
	if err := row.Scan(&p.ID, &p.TelegramID, &p.Username, &p.FirstName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Player, error) {
	return r.findOne(ctx, tx, `SELECT `+playerColumns+` FROM players WHERE id=$1;`, id)
}

func (r *PlayerRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.Player, error) {
	return r.findOne(ctx, tx, `SELECT `+playerColumns+` FROM players WHERE telegram_id=$1;`, tgID)
}

func (r *PlayerRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Player, error) {
	return r.findOne(ctx, tx, `SELECT `+playerColumns+` FROM players WHERE username=$1;`, username)
}

func (r *PlayerRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Player, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY first_name;`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var out []*model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.TelegramID, &p.Username, &p.FirstName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PlayerRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM players;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}
