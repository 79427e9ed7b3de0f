package handler

import (
	"context"
	"strings"
	"time"

	"spybot/internal/core/domain"
	"spybot/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// TextHandler processes one inbound chat message.
type TextHandler interface {
	HandleText(ctx context.Context, chatID int64, text string)
}

type Command struct {
	dispatcher TextHandler
	queue      port.TaskQueue
	messenger  port.Messenger
	timeout    time.Duration
}

func NewCommand(dispatcher TextHandler, queue port.TaskQueue, messenger port.Messenger, timeout time.Duration) *Command {
	return &Command{dispatcher: dispatcher, queue: queue, messenger: messenger, timeout: timeout}
}

// BotOptions configures the bot to hand updates to h one at a time, in arrival order.
// h only enqueues, so running it on the polling goroutine is cheap.
func BotOptions(h bot.HandlerFunc) []bot.Option {
	return []bot.Option{
		bot.WithDefaultHandler(h),
		bot.WithNotAsyncHandlers(),
		bot.WithWorkers(1),
	}
}

const busy = "I'm a bit overloaded at the moment. Please try again in a little while."

// Handle is registered as the bot's default handler. It never blocks on command work:
// every message becomes a task on the interactive queue.
func (c *Command) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	msg := update.Message
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	text = Normalize(text)
	if domain.IsBlank(text) {
		return
	}

	chatID := msg.Chat.ID
	name, _ := domain.SplitCommand(text)

	log.Debug().Int64("chatId", chatID).Str("command", name).Msg("received message")

	err := c.queue.Enqueue(domain.Task{
		Class:  domain.Interactive,
		ChatID: chatID,
		Label:  name,
		Run: func(ctx context.Context) {
			if c.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, c.timeout)
				defer cancel()
			}

			c.dispatcher.HandleText(ctx, chatID, text)
		},
	})
	if err != nil {
		log.Warn().Err(err).Int64("chatId", chatID).Str("queue", c.queue.Name()).Msg("failed to enqueue message")

		if err := c.messenger.Deliver(ctx, chatID, busy); err != nil {
			log.Error().Err(err).Int64("chatId", chatID).Msg(domain.ErrSendingReplyFailed.Error())
		}
	}
}

// Normalize turns Telegram's "/cmd@botname args" form into "cmd args".
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}

	name, arg := domain.SplitCommand(text[1:])
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}

	if arg == "" {
		return name
	}
	return name + " " + arg
}
