package handler

import (
	"context"
	"testing"
	"time"

	"spybot/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDispatcher struct {
	chatID      int64
	text        string
	hasDeadline bool
}

func (m *mockDispatcher) HandleText(ctx context.Context, chatID int64, text string) {
	m.chatID = chatID
	m.text = text
	_, m.hasDeadline = ctx.Deadline()
}

type mockQueue struct {
	tasks []domain.Task
	err   error
}

func (q *mockQueue) Enqueue(task domain.Task) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *mockQueue) Name() string {
	return string(domain.Interactive)
}

type mockMessenger struct {
	replies []string
}

func (m *mockMessenger) Deliver(_ context.Context, _ int64, text string) error {
	m.replies = append(m.replies, text)
	return nil
}

func (m *mockMessenger) NotifyComposing(_ context.Context, _ int64) {}

func (m *mockMessenger) AvailabilityChanged(_ context.Context, _ int64, _ bool) {}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "track golang", want: "track golang"},
		{in: "/track golang", want: "track golang"},
		{in: "/track@spybot golang OR rust", want: "track golang OR rust"},
		{in: "/help@spybot", want: "help"},
		{in: "  /tracks  ", want: "tracks"},
		{in: "hello world", want: "hello world"},
		{in: "/", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestCommand_Handle(t *testing.T) {
	d := &mockDispatcher{}
	q := &mockQueue{}
	c := NewCommand(d, q, &mockMessenger{}, time.Minute)

	c.Handle(t.Context(), nil, &models.Update{
		Message: &models.Message{Chat: models.Chat{ID: 42}, Text: "/Track@spybot golang"},
	})

	require.Len(t, q.tasks, 1)
	task := q.tasks[0]
	assert.Equal(t, domain.Interactive, task.Class)
	assert.Equal(t, int64(42), task.ChatID)
	assert.Equal(t, "Track", task.Label)
	assert.Empty(t, d.text)

	task.Run(t.Context())

	assert.Equal(t, int64(42), d.chatID)
	assert.Equal(t, "Track golang", d.text)
	assert.True(t, d.hasDeadline)
}

func TestCommand_HandleCaption(t *testing.T) {
	d := &mockDispatcher{}
	q := &mockQueue{}
	c := NewCommand(d, q, &mockMessenger{}, 0)

	c.Handle(t.Context(), nil, &models.Update{
		Message: &models.Message{Chat: models.Chat{ID: 1}, Caption: "post look at this"},
	})

	require.Len(t, q.tasks, 1)
	q.tasks[0].Run(t.Context())
	assert.Equal(t, "post look at this", d.text)
	assert.False(t, d.hasDeadline)
}

func TestCommand_HandleIgnored(t *testing.T) {
	q := &mockQueue{}
	c := NewCommand(&mockDispatcher{}, q, &mockMessenger{}, time.Minute)

	c.Handle(t.Context(), nil, &models.Update{})
	c.Handle(t.Context(), nil, &models.Update{Message: &models.Message{Chat: models.Chat{ID: 1}, Text: "   "}})

	assert.Empty(t, q.tasks)
}

func TestCommand_HandleQueueFull(t *testing.T) {
	q := &mockQueue{err: domain.ErrQueueFull}
	m := &mockMessenger{}
	c := NewCommand(&mockDispatcher{}, q, m, time.Minute)

	c.Handle(t.Context(), nil, &models.Update{
		Message: &models.Message{Chat: models.Chat{ID: 1}, Text: "help"},
	})

	assert.Equal(t, []string{busy}, m.replies)
}

func TestBotOptions_HandlesUpdatesInOrder(t *testing.T) {
	q := &mockQueue{}
	c := NewCommand(&mockDispatcher{}, q, &mockMessenger{}, time.Minute)

	b, err := bot.New("123:test", append(BotOptions(c.Handle), bot.WithSkipGetMe())...)
	require.NoError(t, err)

	for _, text := range []string{"track a", "untrack a", "tracks"} {
		b.ProcessUpdate(t.Context(), &models.Update{
			Message: &models.Message{Chat: models.Chat{ID: 7}, Text: text},
		})
	}

	// handlers ran synchronously, so nothing is still in flight
	require.Len(t, q.tasks, 3)
	assert.Equal(t, "track", q.tasks[0].Label)
	assert.Equal(t, "untrack", q.tasks[1].Label)
	assert.Equal(t, "tracks", q.tasks[2].Label)
}
