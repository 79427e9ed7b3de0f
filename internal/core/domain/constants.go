package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrInvalidToggle      = errors.New("value must be on or off")
	ErrInvalidLanguage    = errors.New("language must be a 2 character code")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrNotFound           = errors.New("not found")
	ErrQueueFull          = errors.New("queue is full")
	ErrQueueClosed        = errors.New("queue is closed")
)

const (
	Version    = "1.0.0"
	ProjectURL = "https://github.com/spybot/spybot"
)
