package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

const createPlayersTable = `
CREATE TABLE IF NOT EXISTS players (
    id          UUID PRIMARY KEY,
    telegram_id BIGINT UNIQUE NOT NULL,
    username    TEXT,
    first_name  TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createPlayerStatsTable = `
CREATE TABLE IF NOT EXISTS player_stats (
    id         BIGSERIAL PRIMARY KEY,
    player_id  UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    match_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    adr        DOUBLE PRECISION NOT NULL CHECK (adr >= 0 AND adr <= 150),
    kills      INT NOT NULL DEFAULT 0,
    deaths     INT NOT NULL DEFAULT 0,
    assists    INT NOT NULL DEFAULT 0,
    rating     DOUBLE PRECISION NOT NULL DEFAULT 0,
    map        TEXT,
    team       TEXT
);
CREATE INDEX IF NOT EXISTS idx_player_stats_player ON player_stats(player_id, match_date DESC);`

const createMatchesTable = `
CREATE TABLE IF NOT EXISTS matches (
    id                TEXT PRIMARY KEY,
    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
    pinned_message_id BIGINT,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    balanced_at       TIMESTAMPTZ,
    team1_score       INT NOT NULL DEFAULT 0,
    team2_score       INT NOT NULL DEFAULT 0,
    map               TEXT
);
CREATE INDEX IF NOT EXISTS idx_matches_active ON matches(is_active) WHERE is_active;`

const createMatchPlayersTable = `
CREATE TABLE IF NOT EXISTS match_players (
    match_id  TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
    player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (match_id, player_id)
);`

const createTeamBalanceTable = `
CREATE TABLE IF NOT EXISTS team_balance (
    id            BIGSERIAL PRIMARY KEY,
    match_id      TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
    team1_players TEXT[] NOT NULL,
    team2_players TEXT[] NOT NULL,
    team1_avg_adr DOUBLE PRECISION NOT NULL,
    team2_avg_adr DOUBLE PRECISION NOT NULL,
    difference    DOUBLE PRECISION NOT NULL,
    balanced_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createCooldownsTable = `
CREATE TABLE IF NOT EXISTS cooldowns (
    player_id    UUID PRIMARY KEY REFERENCES players(id) ON DELETE CASCADE,
    cooldown_end TIMESTAMPTZ NOT NULL,
    reason       TEXT
);`

// Migrate applies the schema in dependency order. Statements are IF NOT
// EXISTS, so running against an initialized database is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *zerolog.Logger) error {
	migrations := []struct {
		name string
		sql  string
	}{
		{"players", createPlayersTable},
		{"player_stats", createPlayerStatsTable},
		{"matches", createMatchesTable},
		{"match_players", createMatchPlayersTable},
		{"team_balance", createTeamBalanceTable},
		{"cooldowns", createCooldownsTable},
	}
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
		log.Debug().Str("table", m.name).Msg("migration applied")
	}
	log.Info().Int("count", len(migrations)).Msg("schema up to date")
	return nil
}
