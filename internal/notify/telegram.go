package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/logger"
)

// TelegramSink sends the run summary as a Telegram message.
type TelegramSink struct {
	bot    *bot.Bot
	chatID string
	logger *logger.Logger
}

// NewTelegramSink creates a Telegram sink for the given bot token and
// chat.
func NewTelegramSink(token, chatID string, log *logger.Logger) (*TelegramSink, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramSink{bot: b, chatID: chatID, logger: log}, nil
}

func (t *TelegramSink) Name() string { return "telegram" }

// Send delivers the plain-text run summary to the configured chat.
func (t *TelegramSink) Send(ctx context.Context, result *contracts.RunResult) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   formatRunText(result),
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
