//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"telegram-match-bot/internal/domain/model"
)

func addLine(t *testing.T, repo *StatsRepo, playerID string, kills, deaths, assists int, adr float64, mapName string) *model.StatLine {
	t.Helper()
	s, err := model.NewStatLine(playerID, kills, deaths, assists, adr, mapName, "")
	if err != nil {
		t.Fatalf("NewStatLine failed: %v", err)
	}
	if err := repo.Add(context.Background(), nil, s); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return s
}

func TestStatsRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewStatsRepo(testPool)
	ctx := context.Background()

	t.Run("add assigns an id and averages aggregate", func(t *testing.T) {
		cleanup(t)
		p := seedPlayer(t, 1, "Ivan")

		s1 := addLine(t, repo, p.ID, 20, 10, 5, 100, "de_dust2")
		if s1.ID == 0 {
			t.Error("expected generated stat id")
		}
		addLine(t, repo, p.ID, 10, 10, 5, 80, "")

		a, err := repo.Averages(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("Averages failed: %v", err)
		}
		if a.Matches != 2 || a.AvgADR != 90 || a.AvgKills != 15 {
			t.Errorf("unexpected averages: %+v", a)
		}
	})

	t.Run("recent respects the limit", func(t *testing.T) {
		cleanup(t)
		p := seedPlayer(t, 1, "Ivan")
		for i := 0; i < 7; i++ {
			addLine(t, repo, p.ID, 10+i, 10, 2, 80, "")
		}

		recent, err := repo.Recent(ctx, nil, p.ID, 5)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(recent) != 5 {
			t.Errorf("expected 5 lines, got %d", len(recent))
		}
	})

	t.Run("average adrs cover only players with history", func(t *testing.T) {
		cleanup(t)
		p1 := seedPlayer(t, 1, "Ivan")
		p2 := seedPlayer(t, 2, "Petr")
		addLine(t, repo, p1.ID, 20, 10, 5, 110, "")

		adrs, err := repo.AverageADRs(ctx, nil, []string{p1.ID, p2.ID})
		if err != nil {
			t.Fatalf("AverageADRs failed: %v", err)
		}
		if adrs[p1.ID] != 110 {
			t.Errorf("expected 110 for p1, got %v", adrs[p1.ID])
		}
		if _, ok := adrs[p2.ID]; ok {
			t.Error("player without history must be absent from the map")
		}
	})

	t.Run("out-of-range adr is rejected by the table", func(t *testing.T) {
		cleanup(t)
		p := seedPlayer(t, 1, "Ivan")

		// Bypass the repo to hit the CHECK constraint directly.
		_, err := testPool.Exec(ctx,
			`INSERT INTO player_stats (player_id, adr, kills, deaths, assists) VALUES ($1, $2, 10, 10, 2)`,
			p.ID, 200.0)
		if err == nil {
			t.Error("expected adr=200 insert to fail")
		}
		_, err = testPool.Exec(ctx,
			`INSERT INTO player_stats (player_id, adr, kills, deaths, assists) VALUES ($1, $2, 10, 10, 2)`,
			p.ID, -1.0)
		if err == nil {
			t.Error("expected adr=-1 insert to fail")
		}
	})

	t.Run("leaderboard orders by rating and skips statless players", func(t *testing.T) {
		cleanup(t)
		p1 := seedPlayer(t, 1, "Ivan")
		p2 := seedPlayer(t, 2, "Petr")
		seedPlayer(t, 3, "Ghost")
		addLine(t, repo, p1.ID, 10, 10, 2, 80, "")
		addLine(t, repo, p2.ID, 25, 8, 6, 120, "")

		rows, err := repo.Leaderboard(ctx, nil, 10)
		if err != nil {
			t.Fatalf("Leaderboard failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].FirstName != "Petr" {
			t.Errorf("expected Petr on top, got %s", rows[0].FirstName)
		}
	})
}

func TestCooldownRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewCooldownRepo(testPool)
	ctx := context.Background()

	t.Run("set, read, upsert and sweep", func(t *testing.T) {
		cleanup(t)
		p := seedPlayer(t, 1, "Ivan")

		if err := repo.Set(ctx, nil, p.ID, time.Now().Add(time.Minute), "left pool"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		cd, err := repo.Active(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("Active failed: %v", err)
		}
		if cd == nil || cd.Reason != "left pool" {
			t.Fatalf("unexpected cooldown: %+v", cd)
		}

		// Upsert replaces the end time instead of failing on the PK.
		if err := repo.Set(ctx, nil, p.ID, time.Now().Add(-5*time.Second), "left pool"); err != nil {
			t.Fatalf("Set upsert failed: %v", err)
		}
		cd, err = repo.Active(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("Active failed: %v", err)
		}
		if cd != nil {
			t.Errorf("expired cooldown must read as nil, got %+v", cd)
		}

		n, err := repo.DeleteExpired(ctx, nil)
		if err != nil {
			t.Fatalf("DeleteExpired failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 swept row, got %d", n)
		}
	})
}
