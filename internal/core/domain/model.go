package domain

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

type User struct {
	ChatID           int64
	Status           string
	Active           bool
	AutoPost         bool
	Language         *string
	Username         string
	Password         string
	FriendTimelineID *int64
	NextScan         *time.Time
}

// LoggedIn reports whether both credential fields are present.
func (u *User) LoggedIn() bool {
	return !IsBlank(u.Username) && !IsBlank(u.Password)
}

type Field string

const (
	FieldActive           Field = "active"
	FieldAutoPost         Field = "auto_post"
	FieldLanguage         Field = "language"
	FieldUsername         Field = "username"
	FieldPassword         Field = "password"
	FieldFriendTimelineID Field = "friend_timeline_id"
	FieldNextScan         Field = "next_scan"
)

// Fields is a set of named column updates applied in a single store call.
type Fields map[Field]any

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Anonymous() bool {
	return c.Username == "" && c.Password == ""
}

type TrackCount struct {
	Query    string
	Watchers int
}

type Profile struct {
	ScreenName string
	Name       string
	Location   string
}

type Status struct {
	ID         int64
	Text       string
	ScreenName string
}

type QueueClass string

const (
	Interactive QueueClass = "interactive"
	Network     QueueClass = "network"
)

// Task is a unit of deferred work. Run captures everything it needs at enqueue time.
type Task struct {
	ID     uuid.UUID
	Class  QueueClass
	ChatID int64
	Label  string
	Run    func(ctx context.Context)
}
