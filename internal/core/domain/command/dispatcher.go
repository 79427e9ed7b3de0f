package command

import (
	"context"
	"fmt"
	"strings"

	"spybot/internal/core/domain"
	"spybot/internal/core/port"
	"spybot/internal/core/service"

	"github.com/rs/zerolog/log"
)

type Dispatcher struct {
	registry  *Registry
	messenger port.Messenger
	gateway   *service.UserGateway
}

func NewDispatcher(registry *Registry, messenger port.Messenger, gateway *service.UserGateway) *Dispatcher {
	return &Dispatcher{registry: registry, messenger: messenger, gateway: gateway}
}

const unavailable = "Sorry, I can't reach your settings right now. Please try again later."

// HandleText loads the sender and dispatches one inbound message.
func (d *Dispatcher) HandleText(ctx context.Context, chatID int64, text string) {
	name, arg := domain.SplitCommand(text)
	if name == "" {
		return
	}

	user, err := d.gateway.User(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chatId", chatID).Msg("failed to load user")

		if err := d.messenger.Deliver(ctx, chatID, unavailable); err != nil {
			log.Error().Err(err).Int64("chatId", chatID).Msg(domain.ErrSendingReplyFailed.Error())
		}
		return
	}

	d.Dispatch(ctx, user, name, arg)
}

const fallbackTemplate = `Unknown command '%s'.
Send 'help' for known commands.
If you intended this to be posted, see 'help autopost'`

// Dispatch runs the named command, autoposts unknown input, or explains that the command is unknown.
func (d *Dispatcher) Dispatch(ctx context.Context, user *domain.User, name, arg string) {
	l := log.With().
		Int64("chatId", user.ChatID).
		Str("command", name).
		Logger()

	d.messenger.NotifyComposing(ctx, user.ChatID)

	if cmd, ok := d.registry.Lookup(strings.ToLower(name)); ok {
		l.Info().Msg("handling request")

		if err := cmd.Handler(ctx, user, arg); err != nil {
			l.Error().Err(err).Msg("failed to respond to command")
		}
		return
	}

	if user.AutoPost {
		if post, ok := d.registry.Lookup("post"); ok {
			l.Info().Msg("autoposting unknown command")

			if err := post.Handler(ctx, user, strings.TrimSpace(name+" "+arg)); err != nil {
				l.Error().Err(err).Msg("failed to autopost")
			}
			return
		}
	}

	l.Debug().Msg("no handler for command")

	if err := d.messenger.Deliver(ctx, user.ChatID, fmt.Sprintf(fallbackTemplate, name)); err != nil {
		l.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
	}
}
