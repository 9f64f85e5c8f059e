package model

import (
	"errors"
	"testing"
	"time"

	"telegram-match-bot/internal/domain"
)

func TestNewPlayer(t *testing.T) {
	t.Run("generates an id when empty", func(t *testing.T) {
		p, err := NewPlayer("", 42, "ivan", "Ivan")
		if err != nil {
			t.Fatalf("NewPlayer failed: %v", err)
		}
		if p.ID == "" {
			t.Error("expected generated ID")
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Error("expected timestamps set")
		}
	})

	t.Run("username is optional", func(t *testing.T) {
		if _, err := NewPlayer("", 42, "", "Ivan"); err != nil {
			t.Errorf("empty username should be accepted: %v", err)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		if _, err := NewPlayer("", 0, "ivan", "Ivan"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("zero telegram id: got %v", err)
		}
		if _, err := NewPlayer("", 42, "ivan", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("empty first name: got %v", err)
		}
	})
}

func TestRating(t *testing.T) {
	cases := []struct {
		name    string
		adr     float64
		k, d, a int
		want    float64
	}{
		{"typical line", 100, 20, 10, 5, 1.0 + 3.0 + 0.5},
		{"zero everything", 0, 0, 0, 0, 0},
		// Deaths clamp to 1 so a deathless match stays finite.
		{"deathless", 100, 10, 0, 0, 1.0 + 15.0},
		{"assists only", 50, 0, 5, 8, 0.5 + 0.8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Rating(c.adr, c.k, c.d, c.a); got != c.want {
				t.Errorf("Rating(%v,%d,%d,%d) = %v, want %v", c.adr, c.k, c.d, c.a, got, c.want)
			}
		})
	}
}

func TestRating_Rounding(t *testing.T) {
	// 75/100 + (7*0.3)/(13*0.2) + 3*0.1 = 0.75 + 0.80769... + 0.3
	got := Rating(75, 7, 13, 3)
	if got != 1.9 {
		t.Errorf("expected 1.9 after rounding, got %v", got)
	}
}

func TestNewStatLine(t *testing.T) {
	t.Run("computes the rating", func(t *testing.T) {
		s, err := NewStatLine("p1", 20, 10, 5, 100, "de_dust2", "")
		if err != nil {
			t.Fatalf("NewStatLine failed: %v", err)
		}
		if s.Rating != Rating(100, 20, 10, 5) {
			t.Errorf("rating mismatch: %v", s.Rating)
		}
	})

	t.Run("validates bounds", func(t *testing.T) {
		if _, err := NewStatLine("", 1, 1, 1, 80, "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("empty player id: got %v", err)
		}
		if _, err := NewStatLine("p1", 1, 1, 1, -5, "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("negative adr: got %v", err)
		}
		if _, err := NewStatLine("p1", 1, 1, 1, 151, "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("adr above max: got %v", err)
		}
		if _, err := NewStatLine("p1", -1, 1, 1, 80, "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("negative kills: got %v", err)
		}
	})
}

func TestNewMatch(t *testing.T) {
	m := NewMatch()
	if m.ID == "" {
		t.Error("expected ULID assigned")
	}
	if !m.IsActive {
		t.Error("new match must be active")
	}
	if m.BalancedAt != nil {
		t.Error("new match must not be balanced")
	}
}

func TestCooldownRemaining(t *testing.T) {
	now := time.Now()
	cd := &Cooldown{PlayerID: "p1", End: now.Add(30 * time.Second)}
	if got := cd.Remaining(now); got != 30*time.Second {
		t.Errorf("expected 30s, got %v", got)
	}
	if got := cd.Remaining(now.Add(time.Minute)); got != 0 {
		t.Errorf("expired cooldown should report 0, got %v", got)
	}
	var nilCd *Cooldown
	if got := nilCd.Remaining(now); got != 0 {
		t.Errorf("nil cooldown should report 0, got %v", got)
	}
}
