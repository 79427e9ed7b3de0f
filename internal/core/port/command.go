package port

import (
	"context"

	"spybot/internal/core/domain"
)

type TaskQueue interface {
	// Enqueue hands a task to the queue's workers and returns without waiting for it to run.
	Enqueue(task domain.Task) error
	// Name identifies the queue in logs.
	Name() string
}

type QueueStats interface {
	Name() string
	Pending() int
}

type CredentialCodec interface {
	// Encode turns a plaintext credential into its stored form.
	Encode(plain string) (string, error)
	// Decode reverses Encode.
	Decode(stored string) (string, error)
}

type UserStore interface {
	// FindOrCreateUser loads the user for a chat, creating a default record on first contact.
	FindOrCreateUser(ctx context.Context, chatID int64) (*domain.User, error)
	// UpdateUser writes the given fields for a single user in one statement.
	UpdateUser(ctx context.Context, chatID int64, fields domain.Fields) error
	AddTrack(ctx context.Context, chatID int64, query string) error
	// RemoveTrack reports whether the user was tracking the query.
	RemoveTrack(ctx context.Context, chatID int64, query string) (bool, error)
	ListTracks(ctx context.Context, chatID int64) ([]string, error)
	TopTracks(ctx context.Context, limit int) ([]domain.TrackCount, error)
}
