package service

import (
	"context"

	"spybot/internal/core/domain"
	"spybot/internal/core/port"

	"github.com/rs/zerolog/log"
)

type Authorizer interface {
	IsAuthorized(ctx context.Context, user *domain.User) bool
}

// CredentialAuthorizer gates commands that act on the user's social account.
type CredentialAuthorizer struct {
	messenger port.Messenger
}

func NewAuthorizer(messenger port.Messenger) *CredentialAuthorizer {
	return &CredentialAuthorizer{messenger: messenger}
}

const forbidden = "I don't know your username or password. Use twlogin to set creds."

func (a *CredentialAuthorizer) IsAuthorized(ctx context.Context, user *domain.User) bool {
	if user.LoggedIn() {
		return true
	}

	err := a.messenger.Deliver(ctx, user.ChatID, forbidden)
	if err != nil {
		log.Err(err).Int64("chatId", user.ChatID).Msg("failed to send login required warning")
	}

	return false
}
