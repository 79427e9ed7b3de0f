package port

import (
	"context"

	"spybot/internal/core/domain"
)

type SocialClient interface {
	VerifyCredentials(ctx context.Context) error
	UserProfile(ctx context.Context, screenName string) (domain.Profile, error)
	// LatestHomeStatus returns the most recent item of the authenticated user's home timeline.
	LatestHomeStatus(ctx context.Context) (domain.Status, error)
	Follow(ctx context.Context, screenName string) error
	Unfollow(ctx context.Context, screenName string) error
	Post(ctx context.Context, text string) (domain.Status, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Status, error)
}

type SocialClientFactory interface {
	// Client returns a client authenticated with creds, or an anonymous one for empty creds.
	Client(creds domain.Credentials) SocialClient
}
