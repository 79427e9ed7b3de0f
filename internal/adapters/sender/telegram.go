package sender

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

const TelegramMessageLimit = 4096

//go:generate mockery --name TelegramBot

// TelegramBot is the part of *bot.Bot the sender uses.
type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

type Telegram struct {
	bot TelegramBot
}

func NewTelegram(bot TelegramBot) *Telegram {
	return &Telegram{bot: bot}
}

// Deliver sends text to the chat, split into as many messages as Telegram's size limit requires.
func (t *Telegram) Deliver(ctx context.Context, chatID int64, text string) error {
	for _, part := range chunk(text, TelegramMessageLimit) {
		_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   part,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *Telegram) NotifyComposing(ctx context.Context, chatID int64) {
	_, err := t.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		log.Warn().Err(err).Int64("chatId", chatID).Msg("error sending chat action")
	}
}

// AvailabilityChanged only logs: Telegram bots have no presence to broadcast.
func (t *Telegram) AvailabilityChanged(_ context.Context, chatID int64, active bool) {
	log.Info().Int64("chatId", chatID).Bool("active", active).Msg("availability changed")
}

func chunk(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	parts := make([]string, 0, len(runes)/limit+1)
	for len(runes) > limit {
		parts = append(parts, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}

	return parts
}
