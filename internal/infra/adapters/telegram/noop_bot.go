package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev runs.
// It logs messages instead of talking to Telegram.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	return &NoopBotAdapter{log: logger}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("[noop-telegram] send")
	return nil
}

func (b *NoopBotAdapter) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Msg("[noop-telegram] pin")
	return nil
}

func (b *NoopBotAdapter) UnpinMessage(ctx context.Context, chatID int64, messageID int) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Msg("[noop-telegram] unpin")
	return nil
}

func (b *NoopBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Str("text", text).Msg("[noop-telegram] edit")
	return nil
}
