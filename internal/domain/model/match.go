package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Match is a recruiting session: it opens, collects a pool of players and is
// deactivated either manually or after teams are balanced and played out.
// IDs are ULIDs so lexicographic order follows creation order.
type Match struct {
	ID              string
	IsActive        bool
	PinnedMessageID int64
	CreatedAt       time.Time
	BalancedAt      *time.Time
	Team1Score      int
	Team2Score      int
	Map             string
}

func NewMatch() *Match {
	return &Match{
		ID:        ulid.Make().String(),
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// TeamBalance stores the outcome of one balancing run.
type TeamBalance struct {
	ID           int64
	MatchID      string
	Team1Players []string
	Team2Players []string
	Team1AvgADR  float64
	Team2AvgADR  float64
	Difference   float64
	BalancedAt   time.Time
}
