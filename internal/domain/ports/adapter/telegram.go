package adapter

import "context"

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	PinMessage(ctx context.Context, chatID int64, messageID int) error
	UnpinMessage(ctx context.Context, chatID int64, messageID int) error
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
}
