package command

import (
	"context"
	"fmt"

	"spybot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

func (b *builtins) on(ctx context.Context, user *domain.User, _ string) error {
	if err := b.changeActiveState(ctx, user, true); err != nil {
		return b.storageError(ctx, user, err)
	}

	return b.reply(ctx, user, "Marked you active.")
}

func (b *builtins) off(ctx context.Context, user *domain.User, _ string) error {
	if err := b.changeActiveState(ctx, user, false); err != nil {
		return b.storageError(ctx, user, err)
	}

	return b.reply(ctx, user, "Marked you inactive.")
}

// changeActiveState persists and announces the flag only when it actually flips.
func (b *builtins) changeActiveState(ctx context.Context, user *domain.User, active bool) error {
	changed, err := b.Gateway.SetActive(ctx, user, active)
	if err != nil {
		return err
	}

	if changed {
		b.Messenger.AvailabilityChanged(ctx, user.ChatID, active)
	}

	return nil
}

func (b *builtins) autopost(ctx context.Context, user *domain.User, arg string) error {
	return b.withArg(ctx, user, arg, "Use 'off' or 'on' to disable or enable autoposting", func(a string) error {
		enabled, err := domain.ParseOnOff(a)
		if err != nil {
			return b.reply(ctx, user, "Autopost must be set to on or off")
		}

		if err := b.Gateway.SetAutoPost(ctx, user, enabled); err != nil {
			return b.storageError(ctx, user, err)
		}

		return b.reply(ctx, user, fmt.Sprintf("Autoposting is now %s", onOff(enabled)))
	})
}

func (b *builtins) lang(ctx context.Context, user *domain.User, arg string) error {
	var lang *string
	if code, ok := domain.RequireArgument(arg); ok {
		if len([]rune(code)) != 2 {
			return b.reply(ctx, user, "Language should be a 2-digit country code.")
		}
		lang = &code
	}

	if err := b.Gateway.SetLanguage(ctx, user, lang); err != nil {
		return b.storageError(ctx, user, err)
	}

	if lang == nil {
		return b.reply(ctx, user, "Unset your language.")
	}

	return b.reply(ctx, user, fmt.Sprintf("Set your language to %s", *lang))
}

const (
	loginSaved  = "Your credentials have been verified and saved.  Thanks."
	loginFailed = "Unable to verify your credentials.  They're either wrong or the service is broken."
)

// login verifies the credentials on the network queue and stores them only once they check out.
func (b *builtins) login(ctx context.Context, user *domain.User, arg string) error {
	return b.withArg(ctx, user, arg, "You must supply a username and password", func(a string) error {
		creds, ok := domain.SplitCredentials(a)
		if !ok {
			return b.reply(ctx, user, "You must supply a username and password")
		}

		client := b.Social.Client(creds)

		return b.enqueue(ctx, user, "twlogin", func(ctx context.Context) {
			l := log.With().Int64("chatId", user.ChatID).Str("command", "twlogin").Logger()

			if err := client.VerifyCredentials(ctx); err != nil {
				l.Error().Err(err).Msg("unable to verify credentials")
				b.replyAsync(ctx, user, loginFailed)
				return
			}

			if err := b.Gateway.SaveCredentials(ctx, user, creds); err != nil {
				l.Error().Err(err).Msg("unable to save verified credentials")
				b.replyAsync(ctx, user, storageFailure)
				return
			}

			b.replyAsync(ctx, user, loginSaved)
		})
	})
}

func (b *builtins) logout(ctx context.Context, user *domain.User, _ string) error {
	if err := b.Gateway.ClearCredentials(ctx, user); err != nil {
		return b.storageError(ctx, user, err)
	}

	return b.reply(ctx, user, "You have been logged out.")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
