package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain/model"
)

// Seed inserts a handful of players with stat history so a fresh environment
// has something to balance against. Players are keyed by telegram_id, so
// re-seeding does not duplicate them.
func Seed(ctx context.Context, pool *pgxpool.Pool, log *zerolog.Logger) error {
	type seedPlayer struct {
		tgID     int64
		username string
		first    string
		adr      float64
		kills    int
		deaths   int
		assists  int
	}
	seeds := []seedPlayer{
		{100001, "sniper_one", "Alexey", 92.4, 21, 14, 5},
		{100002, "rush_b", "Dmitry", 81.0, 18, 17, 7},
		{100003, "clutch_or_kick", "Ivan", 74.3, 15, 16, 4},
		{100004, "eco_warrior", "Sergey", 66.8, 12, 18, 9},
		{100005, "flash_bang", "Nikita", 58.2, 10, 19, 6},
	}

	for _, s := range seeds {
		p, err := model.NewPlayer("", s.tgID, s.username, s.first)
		if err != nil {
			return fmt.Errorf("seed player %s: %w", s.username, err)
		}
		const upsert = `
INSERT INTO players (id, telegram_id, username, first_name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (telegram_id) DO NOTHING;
`
		tag, err := pool.Exec(ctx, upsert, p.ID, p.TelegramID, p.Username, p.FirstName, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("seed player %s: %w", s.username, err)
		}
		if tag.RowsAffected() == 0 {
			log.Debug().Str("username", s.username).Msg("seed player already present")
			continue
		}

		line, err := model.NewStatLine(p.ID, s.kills, s.deaths, s.assists, s.adr, "de_dust2", "")
		if err != nil {
			return fmt.Errorf("seed stats %s: %w", s.username, err)
		}
		const insertStats = `
INSERT INTO player_stats (player_id, match_date, adr, kills, deaths, assists, rating, map)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);
`
		_, err = pool.Exec(ctx, insertStats, line.PlayerID, time.Now().UTC(), line.ADR, line.Kills, line.Deaths, line.Assists, line.Rating, line.Map)
		if err != nil {
			return fmt.Errorf("seed stats %s: %w", s.username, err)
		}
		log.Info().Str("username", s.username).Msg("seed player created")
	}
	return nil
}
