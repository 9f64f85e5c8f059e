package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
)

var _ repository.MatchRepository = (*MatchRepo)(nil)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

func (r *MatchRepo) Create(ctx context.Context, tx repository.Tx, m *model.Match) error {
	const q = `
INSERT INTO matches (id, is_active, pinned_message_id, created_at, team1_score, team2_score, map)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, m.ID, m.IsActive, m.PinnedMessageID, m.CreatedAt, m.Team1Score, m.Team2Score, m.Map)
	return err
}

func (r *MatchRepo) FindActive(ctx context.Context, tx repository.Tx) (*model.Match, error) {
	const q = `
SELECT id, is_active, COALESCE(pinned_message_id, 0), created_at, balanced_at, team1_score, team2_score, COALESCE(map, '')
  FROM matches WHERE is_active ORDER BY created_at DESC LIMIT 1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var m model.Match
	row := ex.QueryRow(ctx, q)
	if err := row.Scan(&m.ID, &m.IsActive, &m.PinnedMessageID, &m.CreatedAt, &m.BalancedAt, &m.Team1Score, &m.Team2Score, &m.Map); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) Deactivate(ctx context.Context, tx repository.Tx, matchID string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, `UPDATE matches SET is_active=FALSE WHERE id=$1;`, matchID)
	return err
}

func (r *MatchRepo) SetPinnedMessage(ctx context.Context, tx repository.Tx, matchID string, messageID int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, `UPDATE matches SET pinned_message_id=$1 WHERE id=$2;`, messageID, matchID)
	return err
}

func (r *MatchRepo) MarkBalanced(ctx context.Context, tx repository.Tx, matchID string, at time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, `UPDATE matches SET balanced_at=$1 WHERE id=$2;`, at, matchID)
	return err
}

func (r *MatchRepo) AddPlayer(ctx context.Context, tx repository.Tx, matchID, playerID string) (bool, error) {
	const q = `
INSERT INTO match_players (match_id, player_id)
VALUES ($1,$2)
ON CONFLICT (match_id, player_id) DO NOTHING;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	tag, err := ex.Exec(ctx, q, matchID, playerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MatchRepo) RemovePlayer(ctx context.Context, tx repository.Tx, matchID, playerID string) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM match_players WHERE match_id=$1 AND player_id=$2;`, matchID, playerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MatchRepo) Players(ctx context.Context, tx repository.Tx, matchID string) ([]*model.Player, error) {
	const q = `
SELECT p.id, p.telegram_id, p.username, p.first_name, p.created_at, p.updated_at
  FROM match_players mp
  JOIN players p ON mp.player_id = p.id
 WHERE mp.match_id = $1
 ORDER BY mp.joined_at;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, matchID)
	if err != nil {
		return nil, fmt.Errorf("match players: %w", err)
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

func (r *MatchRepo) CountPlayers(ctx context.Context, tx repository.Tx, matchID string) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM match_players WHERE match_id=$1;`, matchID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count match players: %w", err)
	}
	return n, nil
}

func (r *MatchRepo) SaveBalance(ctx context.Context, tx repository.Tx, b *model.TeamBalance) error {
	const q = `
INSERT INTO team_balance (match_id, team1_players, team2_players, team1_avg_adr, team2_avg_adr, difference, balanced_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, b.MatchID, b.Team1Players, b.Team2Players, b.Team1AvgADR, b.Team2AvgADR, b.Difference, b.BalancedAt)
	return err
}
