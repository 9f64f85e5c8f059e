package telegram

import (
	"errors"
	"testing"

	"telegram-match-bot/internal/domain"
)

func TestParseAddStatsArgs(t *testing.T) {
	t.Run("full argument list", func(t *testing.T) {
		username, kills, deaths, assists, adr, mapName, err := parseAddStatsArgs("@ivanov 15 10 5 120 de_dust2")
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if username != "ivanov" {
			t.Errorf("username: got %q", username)
		}
		if kills != 15 || deaths != 10 || assists != 5 {
			t.Errorf("k/d/a: got %d/%d/%d", kills, deaths, assists)
		}
		if adr != 120 {
			t.Errorf("adr: got %v", adr)
		}
		if mapName != "de_dust2" {
			t.Errorf("map: got %q", mapName)
		}
	})

	t.Run("map is optional", func(t *testing.T) {
		_, _, _, _, _, mapName, err := parseAddStatsArgs("ivanov 15 10 5 120")
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if mapName != "" {
			t.Errorf("expected empty map, got %q", mapName)
		}
	})

	t.Run("fractional adr", func(t *testing.T) {
		_, _, _, _, adr, _, err := parseAddStatsArgs("ivanov 15 10 5 87.5")
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if adr != 87.5 {
			t.Errorf("adr: got %v", adr)
		}
	})

	t.Run("too few arguments", func(t *testing.T) {
		_, _, _, _, _, _, err := parseAddStatsArgs("ivanov 15 10")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("bare @ rejected", func(t *testing.T) {
		_, _, _, _, _, _, err := parseAddStatsArgs("@ 15 10 5 120")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("non-numeric fields rejected", func(t *testing.T) {
		if _, _, _, _, _, _, err := parseAddStatsArgs("ivanov many 10 5 120"); err == nil {
			t.Error("expected error for non-numeric kills")
		}
		if _, _, _, _, _, _, err := parseAddStatsArgs("ivanov 15 10 5 high"); err == nil {
			t.Error("expected error for non-numeric adr")
		}
	})
}
