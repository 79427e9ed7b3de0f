package command

import (
	"context"
	"fmt"
	"strings"

	"spybot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

const (
	searchResults = 2
	topTracks     = 10
)

func (b *builtins) track(ctx context.Context, user *domain.User, arg string) error {
	return b.withArg(ctx, user, arg, defaultMissingArg, func(query string) error {
		if err := b.Gateway.Track(ctx, user, query); err != nil {
			return b.storageError(ctx, user, err)
		}

		return b.reply(ctx, user, fmt.Sprintf("Tracking %s", query))
	})
}

func (b *builtins) untrack(ctx context.Context, user *domain.User, arg string) error {
	return b.withArg(ctx, user, arg, defaultMissingArg, func(query string) error {
		removed, err := b.Gateway.Untrack(ctx, user, query)
		if err != nil {
			return b.storageError(ctx, user, err)
		}

		if !removed {
			return b.reply(ctx, user,
				fmt.Sprintf("Didn't stop tracking %s (are you sure you were tracking it?)", query))
		}

		return b.reply(ctx, user, fmt.Sprintf("Stopped tracking %s", query))
	})
}

func (b *builtins) tracks(ctx context.Context, user *domain.User, _ string) error {
	tracks, err := b.Gateway.Tracks(ctx, user)
	if err != nil {
		return b.storageError(ctx, user, err)
	}

	return b.reply(ctx, user, fmt.Sprintf("Tracking %d topics\n%s", len(tracks), strings.Join(tracks, "\n")))
}

func (b *builtins) top10(ctx context.Context, user *domain.User, _ string) error {
	top, err := b.Gateway.TopTracks(ctx, topTracks)
	if err != nil {
		return b.storageError(ctx, user, err)
	}

	out := []string{"Top 10 most tracked topics:", ""}
	for _, t := range top {
		out = append(out, fmt.Sprintf("%s (%d watchers)", t.Query, t.Watchers))
	}

	return b.reply(ctx, user, strings.Join(out, "\n"))
}

// search runs a one-off query on the network queue without storing it.
func (b *builtins) search(ctx context.Context, user *domain.User, arg string) error {
	return b.withArg(ctx, user, arg, defaultMissingArg, func(query string) error {
		client := b.Social.Client(domain.Credentials{})

		return b.enqueue(ctx, user, "search", func(ctx context.Context) {
			results, err := client.Search(ctx, query, searchResults)
			if err != nil {
				log.Error().Err(err).Int64("chatId", user.ChatID).Str("query", query).Msg("search failed")
				b.replyAsync(ctx, user, fmt.Sprintf("Unable to search for %s right now.", query))
				return
			}

			if len(results) == 0 {
				b.replyAsync(ctx, user, fmt.Sprintf("No results for %s", query))
				return
			}

			out := []string{"Results from your query:"}
			for _, r := range results {
				out = append(out, fmt.Sprintf("%s: %s", r.ScreenName, r.Text))
			}

			b.replyAsync(ctx, user, strings.Join(out, "\n\n"))
		})
	})
}
