package command

import (
	"context"
	"fmt"
	"strings"

	"spybot/internal/core/domain"
)

const autopostHelp = `Autopost lets you post by sending any unknown command.
usage:  'autopost on' or 'autopost off'

When autopost is on, any message that doesn't look like a command is posted.
The 'post' command still works for text that happens to look like a command.`

const trackHelp = `Track delivers search results for a query to your chat periodically.
Example queries:

track iphone
track iphone OR android
track iphone android`

const untrackHelp = `Untrack stops tracking the given query.
Examples:

untrack iphone
untrack iphone OR android
untrack iphone android`

const loginHelp = `Provide login credentials for your account.
NOTE: Handing out your credentials is dangerous. They are stored as safely as we can, but there are no promises.
Example usage:

twlogin myname myr4a11yk0mp13xp455w0rd`

const watchFriendsHelp = `Enable or disable watching friends.

  watch_friends on

sends you a message for every post of the people you follow.

  watch_friends off

gives you a more relaxing day.`

const langHelp = `Set or clear your language preference.
With no argument your preference is cleared and tracks return posts in any language.
Otherwise supply a 2 letter code to restrict tracks to that language.

Example, only English posts from tracks:

lang en

Example, clear the preference:

lang`

// start answers Telegram's first-contact command; any deep-link payload is ignored.
func (b *builtins) start(ctx context.Context, user *domain.User, _ string) error {
	return b.help(ctx, user, "")
}

func (b *builtins) help(ctx context.Context, user *domain.User, arg string) error {
	topic, ok := domain.RequireArgument(arg)
	if !ok {
		sb := &strings.Builder{}
		sb.WriteString("Available commands:\n")
		sb.WriteString("Type `help somecmd' for more help on `somecmd'\n\n")

		for _, entry := range b.registry.List() {
			fmt.Fprintf(sb, "%s\t%s\n", entry.Name, entry.Short)
		}

		sb.WriteString("\nTracks and searches accept the usual search operators (OR, quotes, from:name).\n")
		fmt.Fprintf(sb, "Questions, suggestions or complaints: %s", domain.ProjectURL)

		return b.reply(ctx, user, sb.String())
	}

	cmd, found := b.registry.Lookup(topic)
	if !found || cmd.Help == nil {
		return b.reply(ctx, user, fmt.Sprintf("Topic %s is unknown.  Type `help' for known commands.", topic))
	}

	return b.reply(ctx, user, fmt.Sprintf("Help for `%s'\n%s", topic, cmd.Help.Full))
}

func (b *builtins) version(ctx context.Context, user *domain.User, _ string) error {
	return b.reply(ctx, user, fmt.Sprintf("Running version %s\nFor the source and more info, see %s",
		domain.Version, domain.ProjectURL))
}

func (b *builtins) status(ctx context.Context, user *domain.User, _ string) error {
	tracks, err := b.Gateway.Tracks(ctx, user)
	if err != nil {
		return b.storageError(ctx, user, err)
	}

	state := "Not Active"
	if user.Active {
		state = "Active"
	}

	out := []string{
		fmt.Sprintf("Chat:  %d", user.ChatID),
		fmt.Sprintf("Session status:  %s", user.Status),
		fmt.Sprintf("Bot state:  %s", state),
	}

	if user.LoggedIn() {
		out = append(out, fmt.Sprintf("Logged in for API services as %s", user.Username))
	} else {
		out = append(out, "You're not logged in for API services.")
	}

	out = append(out, fmt.Sprintf("You are currently tracking %d topics.", len(tracks)))

	return b.reply(ctx, user, strings.Join(out, "\n"))
}
