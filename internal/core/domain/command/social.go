package command

import (
	"context"
	"fmt"
	"strings"

	"spybot/internal/core/domain"
	"spybot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const whoisPosts = 3

// whois looks up a public profile, so it runs with an anonymous client.
func (b *builtins) whois(ctx context.Context, user *domain.User, arg string) error {
	return b.withArg(ctx, user, arg, "For whom are you looking?", func(name string) error {
		client := b.Social.Client(domain.Credentials{})

		return b.enqueue(ctx, user, "whois", func(ctx context.Context) {
			out, err := b.describe(ctx, client, name)
			if err != nil {
				log.Error().Err(err).Int64("chatId", user.ChatID).Str("whois", name).Msg("unable to do a whois")
				b.replyAsync(ctx, user, fmt.Sprintf("Unable to get information for %s", name))
				return
			}

			b.replyAsync(ctx, user, out)
		})
	})
}

func (b *builtins) describe(ctx context.Context, client port.SocialClient, name string) (string, error) {
	profile, err := client.UserProfile(ctx, name)
	if err != nil {
		return "", err
	}

	posts, err := client.Search(ctx, "from:"+name, whoisPosts)
	if err != nil {
		return "", err
	}

	realName := orDefault(profile.Name, "Someone")
	location := orDefault(profile.Location, "Somewhere")

	out := []string{fmt.Sprintf("%s is %s from %s", name, realName, location), "Most recent posts:"}
	for i, p := range posts {
		out = append(out, fmt.Sprintf("\n%d) %s", i+1, p.Text))
	}
	out = append(out, fmt.Sprintf("\n%s/%s", b.WebURL, name))

	return strings.Join(out, "\n"), nil
}

const postFailed = ":( Failed to post your message.  Your password may be wrong, or the service may be broken."

func (b *builtins) post(ctx context.Context, user *domain.User, arg string) error {
	return b.socialCall(ctx, user, arg, "You need to actually tell me what to post", "post",
		func(ctx context.Context, client port.SocialClient, message string) {
			status, err := client.Post(ctx, message)
			if err != nil {
				log.Error().Err(err).Int64("chatId", user.ChatID).Msg("failed to post")
				b.replyAsync(ctx, user, postFailed)
				return
			}

			url := fmt.Sprintf("%s/%s/statuses/%d", b.WebURL, user.Username, status.ID)
			b.replyAsync(ctx, user, ":) Your message has been posted: "+url)
		})
}

// follow and leave include the collaborator's error text so the user can see why it failed.
func (b *builtins) follow(ctx context.Context, user *domain.User, arg string) error {
	return b.socialCall(ctx, user, arg, "Whom would you like to follow?", "follow",
		func(ctx context.Context, client port.SocialClient, name string) {
			if err := client.Follow(ctx, name); err != nil {
				log.Error().Err(err).Int64("chatId", user.ChatID).Str("follow", name).Msg("failed to follow a user")
				b.replyAsync(ctx, user, fmt.Sprintf(":( Failed to follow %s: %s", name, err))
				return
			}

			b.replyAsync(ctx, user, fmt.Sprintf(":) Now following %s", name))
		})
}

func (b *builtins) leave(ctx context.Context, user *domain.User, arg string) error {
	return b.socialCall(ctx, user, arg, "Whom would you like to leave?", "leave",
		func(ctx context.Context, client port.SocialClient, name string) {
			if err := client.Unfollow(ctx, name); err != nil {
				log.Error().Err(err).Int64("chatId", user.ChatID).Str("leave", name).Msg("failed to stop following a user")
				b.replyAsync(ctx, user, fmt.Sprintf(":( Failed to leave %s: %s", name, err))
				return
			}

			b.replyAsync(ctx, user, fmt.Sprintf(":) No longer following %s", name))
		})
}

const watchUsage = "Watch value must be 'off' or 'on'"

// watchFriends stores the newest home timeline id as the starting marker; off clears it without a network call.
func (b *builtins) watchFriends(ctx context.Context, user *domain.User, arg string) error {
	if !b.Authorizer.IsAuthorized(ctx, user) {
		return nil
	}

	return b.withArg(ctx, user, arg, "Please specify 'on' or 'off'", func(a string) error {
		watch, err := domain.ParseOnOff(a)
		if err != nil {
			return b.reply(ctx, user, watchUsage)
		}

		if !watch {
			if err := b.Gateway.SetFriendTimelineMarker(ctx, user, nil); err != nil {
				return b.storageError(ctx, user, err)
			}
			return b.reply(ctx, user, "No longer watching your friends.")
		}

		creds, err := b.Gateway.Credentials(user)
		if err != nil {
			log.Error().Err(err).Int64("chatId", user.ChatID).Msg("failed to decode credentials")
			return b.reply(ctx, user, credentialsUnreadable)
		}

		client := b.Social.Client(creds)

		return b.enqueue(ctx, user, "watch_friends", func(ctx context.Context) {
			l := log.With().Int64("chatId", user.ChatID).Str("command", "watch_friends").Logger()

			latest, err := client.LatestHomeStatus(ctx)
			if err != nil {
				l.Error().Err(err).Msg("failed to do initial friend timeline lookup")
				b.replyAsync(ctx, user, ":( Failed to lookup your home timeline")
				return
			}

			if err := b.Gateway.SetFriendTimelineMarker(ctx, user, &latest.ID); err != nil {
				l.Error().Err(err).Msg("failed to store friend timeline marker")
				b.replyAsync(ctx, user, storageFailure)
				return
			}

			b.replyAsync(ctx, user, fmt.Sprintf("Watching messages from everyone you follow after ``%s'' from @%s",
				latest.Text, latest.ScreenName))
		})
	})
}

func orDefault(s, fallback string) string {
	if domain.IsBlank(s) {
		return fallback
	}
	return s
}
