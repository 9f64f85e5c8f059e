package model

import (
	"math"
	"time"

	"telegram-match-bot/internal/domain"
)

const (
	MinADR = 0.0
	MaxADR = 150.0
)

// StatLine is a single per-match stat record for a player.
type StatLine struct {
	ID        int64
	PlayerID  string
	MatchDate time.Time
	ADR       float64
	Kills     int
	Deaths    int
	Assists   int
	Rating    float64
	Map       string
	Team      string
}

func NewStatLine(playerID string, kills, deaths, assists int, adr float64, mapName, team string) (*StatLine, error) {
	if playerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if adr < MinADR || adr > MaxADR {
		return nil, domain.ErrInvalidArgument
	}
	if kills < 0 || deaths < 0 || assists < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &StatLine{
		PlayerID:  playerID,
		MatchDate: time.Now(),
		ADR:       adr,
		Kills:     kills,
		Deaths:    deaths,
		Assists:   assists,
		Rating:    Rating(adr, kills, deaths, assists),
		Map:       mapName,
		Team:      team,
	}, nil
}

// Rating combines ADR, K/D ratio and assists into a single score, rounded to
// one decimal. Deaths are clamped to 1 so a deathless match does not blow up
// the ratio term.
func Rating(adr float64, kills, deaths, assists int) float64 {
	d := deaths
	if d < 1 {
		d = 1
	}
	r := adr/100.0 + (float64(kills)*0.3)/(float64(d)*0.2) + float64(assists)*0.1
	return math.Round(r*10) / 10
}

// PlayerAverages aggregates a player's stat history.
type PlayerAverages struct {
	Matches    int
	AvgADR     float64
	AvgKills   float64
	AvgDeaths  float64
	AvgAssists float64
	AvgRating  float64
}

// LeaderboardRow is one entry of the rating top list.
type LeaderboardRow struct {
	Username  string
	FirstName string
	Matches   int
	AvgADR    float64
	AvgKills  float64
	AvgRating float64
}
