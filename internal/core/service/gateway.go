package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"spybot/internal/core/domain"
	"spybot/internal/core/port"
)

// UserGateway owns the rules for reading and mutating persisted user state.
// Every mutation is one targeted store update; the in-memory user is refreshed only after it succeeds.
type UserGateway struct {
	store port.UserStore
	codec port.CredentialCodec
	now   func() time.Time
}

func NewUserGateway(store port.UserStore, codec port.CredentialCodec) *UserGateway {
	return &UserGateway{store: store, codec: codec, now: time.Now}
}

func (g *UserGateway) User(ctx context.Context, chatID int64) (*domain.User, error) {
	user, err := g.store.FindOrCreateUser(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// SetActive persists the flag only if it differs and reports whether it changed.
func (g *UserGateway) SetActive(ctx context.Context, user *domain.User, active bool) (bool, error) {
	if user.Active == active {
		return false, nil
	}

	if err := g.store.UpdateUser(ctx, user.ChatID, domain.Fields{domain.FieldActive: active}); err != nil {
		return false, fmt.Errorf("failed to update active flag: %w", err)
	}

	user.Active = active
	return true, nil
}

func (g *UserGateway) SetAutoPost(ctx context.Context, user *domain.User, autoPost bool) error {
	if err := g.store.UpdateUser(ctx, user.ChatID, domain.Fields{domain.FieldAutoPost: autoPost}); err != nil {
		return fmt.Errorf("failed to update autopost: %w", err)
	}

	user.AutoPost = autoPost
	return nil
}

// SetLanguage stores a 2 character code, or clears the preference when lang is nil.
func (g *UserGateway) SetLanguage(ctx context.Context, user *domain.User, lang *string) error {
	if lang != nil && len([]rune(*lang)) != 2 {
		return domain.ErrInvalidLanguage
	}

	var value any
	if lang != nil {
		value = *lang
	}

	if err := g.store.UpdateUser(ctx, user.ChatID, domain.Fields{domain.FieldLanguage: value}); err != nil {
		return fmt.Errorf("failed to update language: %w", err)
	}

	user.Language = lang
	return nil
}

// SaveCredentials stores the username with the encoded password and schedules an immediate scan.
func (g *UserGateway) SaveCredentials(ctx context.Context, user *domain.User, creds domain.Credentials) error {
	encoded, err := g.codec.Encode(creds.Password)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	next := g.now().UTC()

	err = g.store.UpdateUser(ctx, user.ChatID, domain.Fields{
		domain.FieldUsername: creds.Username,
		domain.FieldPassword: encoded,
		domain.FieldNextScan: next,
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	user.Username = creds.Username
	user.Password = encoded
	user.NextScan = &next
	return nil
}

func (g *UserGateway) ClearCredentials(ctx context.Context, user *domain.User) error {
	err := g.store.UpdateUser(ctx, user.ChatID, domain.Fields{
		domain.FieldUsername: nil,
		domain.FieldPassword: nil,
	})
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	user.Username = ""
	user.Password = ""
	return nil
}

// Credentials decodes the stored password of a logged in user.
func (g *UserGateway) Credentials(user *domain.User) (domain.Credentials, error) {
	if !user.LoggedIn() {
		return domain.Credentials{}, domain.ErrMissingCredentials
	}

	password, err := g.codec.Decode(user.Password)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to decode credentials: %w", err)
	}

	return domain.Credentials{Username: user.Username, Password: password}, nil
}

func (g *UserGateway) SetFriendTimelineMarker(ctx context.Context, user *domain.User, id *int64) error {
	var value any
	if id != nil {
		value = *id
	}

	if err := g.store.UpdateUser(ctx, user.ChatID, domain.Fields{domain.FieldFriendTimelineID: value}); err != nil {
		return fmt.Errorf("failed to update friend timeline marker: %w", err)
	}

	user.FriendTimelineID = id
	return nil
}

func (g *UserGateway) Track(ctx context.Context, user *domain.User, query string) error {
	if err := g.store.AddTrack(ctx, user.ChatID, query); err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}

	return nil
}

func (g *UserGateway) Untrack(ctx context.Context, user *domain.User, query string) (bool, error) {
	removed, err := g.store.RemoveTrack(ctx, user.ChatID, query)
	if err != nil {
		return false, fmt.Errorf("failed to remove track: %w", err)
	}

	return removed, nil
}

// Tracks returns the user's queries sorted lexicographically.
func (g *UserGateway) Tracks(ctx context.Context, user *domain.User) ([]string, error) {
	tracks, err := g.store.ListTracks(ctx, user.ChatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}

	slices.Sort(tracks)
	return tracks, nil
}

func (g *UserGateway) TopTracks(ctx context.Context, limit int) ([]domain.TrackCount, error) {
	top, err := g.store.TopTracks(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top tracks: %w", err)
	}

	return top, nil
}
