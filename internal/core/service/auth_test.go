package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"spybot/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

type mockMessenger struct {
	mu           sync.Mutex
	callCount    int
	sendReplies  []string
	sendError    error
	availability []bool
}

func (m *mockMessenger) NotifyComposing(_ context.Context, _ int64) {}

func (m *mockMessenger) AvailabilityChanged(_ context.Context, _ int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availability = append(m.availability, active)
}

func (m *mockMessenger) Deliver(_ context.Context, _ int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.sendReplies = append(m.sendReplies, text)
	return m.sendError
}

func TestCredentialAuthorizer_IsAuthorized(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		sendErr    error
		want       bool
		expectSend bool
	}{
		{
			name:       "logged in user",
			user:       &domain.User{ChatID: 1, Username: "dustin", Password: "c2VjcmV0"},
			want:       true,
			expectSend: false,
		},
		{
			name:       "no username",
			user:       &domain.User{ChatID: 2, Password: "c2VjcmV0"},
			want:       false,
			expectSend: true,
		},
		{
			name:       "blank password",
			user:       &domain.User{ChatID: 3, Username: "dustin", Password: " "},
			want:       false,
			expectSend: true,
		},
		{
			name:       "send fails for anonymous user",
			user:       &domain.User{ChatID: 4},
			sendErr:    errors.New("send failed"),
			want:       false,
			expectSend: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messenger := &mockMessenger{sendError: tt.sendErr}
			a := NewAuthorizer(messenger)

			got := a.IsAuthorized(t.Context(), tt.user)

			assert.Equal(t, tt.want, got)
			if tt.expectSend {
				assert.Equal(t, 1, messenger.callCount)
				assert.Equal(t, forbidden, messenger.sendReplies[0])
				assert.Contains(t, messenger.sendReplies[0], "twlogin")
			} else {
				assert.Equal(t, 0, messenger.callCount)
			}
		})
	}
}
