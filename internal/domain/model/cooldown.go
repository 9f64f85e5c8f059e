package model

import "time"

// Cooldown blocks a player from re-joining a pool until End.
type Cooldown struct {
	PlayerID string
	End      time.Time
	Reason   string
}

func (c *Cooldown) Remaining(now time.Time) time.Duration {
	if c == nil || !c.End.After(now) {
		return 0
	}
	return c.End.Sub(now)
}
