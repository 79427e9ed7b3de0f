package port

import (
	"context"
)

type Messenger interface {
	// Deliver sends text to the chat session identified by chatID.
	Deliver(ctx context.Context, chatID int64, text string) error
	// NotifyComposing shows a typing hint. Failures are swallowed.
	NotifyComposing(ctx context.Context, chatID int64)
	// AvailabilityChanged tells the transport that the user toggled updates on or off.
	AvailabilityChanged(ctx context.Context, chatID int64, active bool)
}
