package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) Add(ctx context.Context, tx repository.Tx, s *model.StatLine) error {
	const q = `
INSERT INTO player_stats (player_id, match_date, adr, kills, deaths, assists, rating, map, team)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	return ex.QueryRow(ctx, q, s.PlayerID, s.MatchDate, s.ADR, s.Kills, s.Deaths, s.Assists, s.Rating, nullable(s.Map), nullable(s.Team)).Scan(&s.ID)
}

func (r *StatsRepo) Recent(ctx context.Context, tx repository.Tx, playerID string, limit int) ([]*model.StatLine, error) {
	const q = `
SELECT id, player_id, match_date, adr, kills, deaths, assists, rating, COALESCE(map, ''), COALESCE(team, '')
  FROM player_stats
 WHERE player_id = $1
 ORDER BY match_date DESC
 LIMIT $2;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent stats: %w", err)
	}
	defer rows.Close()

	var out []*model.StatLine
	for rows.Next() {
		var s model.StatLine
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.MatchDate, &s.ADR, &s.Kills, &s.Deaths, &s.Assists, &s.Rating, &s.Map, &s.Team); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *StatsRepo) Averages(ctx context.Context, tx repository.Tx, playerID string) (*model.PlayerAverages, error) {
	const q = `
SELECT COUNT(*),
       COALESCE(AVG(adr), 0),
       COALESCE(AVG(kills), 0),
       COALESCE(AVG(deaths), 0),
       COALESCE(AVG(assists), 0),
       COALESCE(AVG(rating), 0)
  FROM player_stats
 WHERE player_id = $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var a model.PlayerAverages
	row := ex.QueryRow(ctx, q, playerID)
	if err := row.Scan(&a.Matches, &a.AvgADR, &a.AvgKills, &a.AvgDeaths, &a.AvgAssists, &a.AvgRating); err != nil {
		return nil, fmt.Errorf("averages: %w", err)
	}
	return &a, nil
}

func (r *StatsRepo) AverageADRs(ctx context.Context, tx repository.Tx, playerIDs []string) (map[string]float64, error) {
	const q = `
SELECT player_id, AVG(adr)
  FROM player_stats
 WHERE player_id = ANY($1)
 GROUP BY player_id;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("average adrs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(playerIDs))
	for rows.Next() {
		var id string
		var adr float64
		if err := rows.Scan(&id, &adr); err != nil {
			return nil, err
		}
		out[id] = adr
	}
	return out, rows.Err()
}

func (r *StatsRepo) Leaderboard(ctx context.Context, tx repository.Tx, limit int) ([]*model.LeaderboardRow, error) {
	const q = `
SELECT COALESCE(p.username, ''), p.first_name,
       COUNT(ps.id),
       COALESCE(AVG(ps.adr), 0),
       COALESCE(AVG(ps.kills), 0),
       COALESCE(AVG(ps.rating), 0)
  FROM players p
  LEFT JOIN player_stats ps ON p.id = ps.player_id
 GROUP BY p.id, p.username, p.first_name
HAVING COUNT(ps.id) > 0
 ORDER BY AVG(ps.rating) DESC
 LIMIT $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []*model.LeaderboardRow
	for rows.Next() {
		var lr model.LeaderboardRow
		if err := rows.Scan(&lr.Username, &lr.FirstName, &lr.Matches, &lr.AvgADR, &lr.AvgKills, &lr.AvgRating); err != nil {
			return nil, err
		}
		out = append(out, &lr)
	}
	return out, rows.Err()
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
