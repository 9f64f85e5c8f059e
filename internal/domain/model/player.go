package model

import (
	"time"

	"telegram-match-bot/internal/domain"

	"github.com/google/uuid"
)

// Player is a domain entity representing a registered Telegram user who can
// take part in matches. Username may be empty (Telegram does not require one);
// FirstName is the display name and is always present.
type Player struct {
	ID         string
	TelegramID int64
	Username   string
	FirstName  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewPlayer(id string, tgID int64, username, firstName string) (*Player, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if firstName == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Player{
		ID:         id,
		TelegramID: tgID,
		Username:   username,
		FirstName:  firstName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (p *Player) IsZero() bool { return p == nil || p.ID == "" }
func (p *Player) Touch()       { p.UpdatedAt = time.Now() }
