package command

import (
	"context"
	"fmt"

	"spybot/internal/core/domain"
	"spybot/internal/core/port"
	"spybot/internal/core/service"

	"github.com/rs/zerolog/log"
)

type Deps struct {
	Messenger  port.Messenger
	Gateway    *service.UserGateway
	Authorizer service.Authorizer
	Social     port.SocialClientFactory
	Network    port.TaskQueue
	// Queues are reported by the debug command.
	Queues []port.QueueStats
	// WebURL is the base of permalinks to posts and profiles.
	WebURL string
}

type builtins struct {
	Deps
	registry *Registry
}

// NewBuiltins registers every built-in command and its help text.
func NewBuiltins(deps Deps) *Registry {
	b := &builtins{Deps: deps, registry: &Registry{}}
	r := b.registry

	r.Register("help", "Get help for commands.", b.help)
	r.Register("start", "", b.start)
	r.Register("version", "", b.version)
	r.Register("status", "", b.status)
	r.Register("debug", "", b.debugInfo)

	r.Register("on", "Activate updates.", b.on)
	r.Register("off", "Disable updates.", b.off)
	r.Register("autopost", "Enable or disable autopost", b.autopost)
	r.Register("lang", "Set your language.", b.lang)

	r.Register("track", "Track a topic (search query string)", b.track)
	r.Register("untrack", "Stop tracking a topic", b.untrack)
	r.Register("tracks", "List your tracks.", b.tracks)
	r.Register("top10", "List the most tracked topics.", b.top10)
	r.Register("search", "Perform a sample search (but do not track)", b.search)

	r.Register("whois", "Find out who a particular user is.", b.whois)
	r.Register("twlogin", "Set your username and password (use at your own risk)", b.login)
	r.Register("twlogout", "Discard your credentials", b.logout)
	r.Register("post", "Post a message.", b.post)
	r.Register("follow", "Follow a user", b.follow)
	r.Register("leave", "Leave (stop following) a user", b.leave)
	r.Register("watch_friends", "Enable or disable watching friends.", b.watchFriends)

	r.SetFullHelp("autopost", autopostHelp)
	r.SetFullHelp("track", trackHelp)
	r.SetFullHelp("untrack", untrackHelp)
	r.SetFullHelp("twlogin", loginHelp)
	r.SetFullHelp("watch_friends", watchFriendsHelp)
	r.SetFullHelp("lang", langHelp)

	return r
}

func (b *builtins) reply(ctx context.Context, user *domain.User, text string) error {
	if err := b.Messenger.Deliver(ctx, user.ChatID, text); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	return nil
}

// replyAsync is used from queued tasks, where there is no caller to return an error to.
func (b *builtins) replyAsync(ctx context.Context, user *domain.User, text string) {
	if err := b.reply(ctx, user, text); err != nil {
		log.Error().Err(err).Int64("chatId", user.ChatID).Send()
	}
}

const defaultMissingArg = "Please supply a search query"

func (b *builtins) withArg(ctx context.Context, user *domain.User, raw, missing string,
	fn func(arg string) error) error {
	arg, ok := domain.RequireArgument(raw)
	if !ok {
		return b.reply(ctx, user, missing)
	}

	return fn(arg)
}

const queueBusy = "I'm a bit overloaded at the moment. Please try again in a little while."

// enqueue hands run to the network queue; if that fails the user is told right away.
func (b *builtins) enqueue(ctx context.Context, user *domain.User, label string, run func(ctx context.Context)) error {
	err := b.Network.Enqueue(domain.Task{
		Class:  domain.Network,
		ChatID: user.ChatID,
		Label:  label,
		Run:    run,
	})
	if err != nil {
		log.Warn().Err(err).Int64("chatId", user.ChatID).Str("label", label).Msg("failed to enqueue task")
		return b.reply(ctx, user, queueBusy)
	}

	return nil
}

const credentialsUnreadable = "I couldn't read your stored credentials. Please use twlogin again."

// socialCall checks credentials and the argument, then runs fn with an authenticated client on the network queue.
func (b *builtins) socialCall(ctx context.Context, user *domain.User, raw, missing, label string,
	fn func(ctx context.Context, client port.SocialClient, arg string)) error {
	if !b.Authorizer.IsAuthorized(ctx, user) {
		return nil
	}

	return b.withArg(ctx, user, raw, missing, func(arg string) error {
		creds, err := b.Gateway.Credentials(user)
		if err != nil {
			log.Error().Err(err).Int64("chatId", user.ChatID).Msg("failed to decode credentials")
			return b.reply(ctx, user, credentialsUnreadable)
		}

		client := b.Social.Client(creds)

		return b.enqueue(ctx, user, label, func(ctx context.Context) {
			fn(ctx, client, arg)
		})
	})
}

const storageFailure = "Sorry, something went wrong with your settings. Please try again later."

// storageError tells the user about a failed store call and hands the error back to the dispatcher for logging.
func (b *builtins) storageError(ctx context.Context, user *domain.User, err error) error {
	if replyErr := b.reply(ctx, user, storageFailure); replyErr != nil {
		log.Error().Err(replyErr).Int64("chatId", user.ChatID).Send()
	}

	return err
}
