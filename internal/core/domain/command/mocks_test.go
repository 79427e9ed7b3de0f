package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"spybot/internal/core/domain"
	"spybot/internal/core/port"
	"spybot/internal/core/service"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessenger struct {
	mu           sync.Mutex
	replies      []string
	composing    int
	availability []bool
	replyErr     error
}

func (m *mockMessenger) Deliver(_ context.Context, _ int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, text)
	return m.replyErr
}

func (m *mockMessenger) NotifyComposing(_ context.Context, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.composing++
}

func (m *mockMessenger) AvailabilityChanged(_ context.Context, _ int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availability = append(m.availability, active)
}

func (m *mockMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return ""
	}
	return m.replies[len(m.replies)-1]
}

// memoryStore keeps users and tracks in maps and counts writes.
type memoryStore struct {
	users   map[int64]domain.User
	tracks  map[int64]map[string]bool
	writes  int
	loadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[int64]domain.User{}, tracks: map[int64]map[string]bool{}}
}

func (s *memoryStore) FindOrCreateUser(_ context.Context, chatID int64) (*domain.User, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	u, ok := s.users[chatID]
	if !ok {
		u = domain.User{ChatID: chatID, Active: true, Status: "available"}
		s.users[chatID] = u
	}
	return &u, nil
}

func (s *memoryStore) UpdateUser(_ context.Context, chatID int64, fields domain.Fields) error {
	s.writes++
	u := s.users[chatID]
	for field, value := range fields {
		switch field {
		case domain.FieldActive:
			u.Active = value.(bool)
		case domain.FieldAutoPost:
			u.AutoPost = value.(bool)
		case domain.FieldLanguage:
			if value == nil {
				u.Language = nil
			} else {
				lang := value.(string)
				u.Language = &lang
			}
		case domain.FieldUsername:
			u.Username, _ = value.(string)
		case domain.FieldPassword:
			u.Password, _ = value.(string)
		case domain.FieldFriendTimelineID:
			if value == nil {
				u.FriendTimelineID = nil
			} else {
				id := value.(int64)
				u.FriendTimelineID = &id
			}
		case domain.FieldNextScan:
			next := value.(time.Time)
			u.NextScan = &next
		}
	}
	s.users[chatID] = u
	return nil
}

func (s *memoryStore) AddTrack(_ context.Context, chatID int64, query string) error {
	if s.tracks[chatID] == nil {
		s.tracks[chatID] = map[string]bool{}
	}
	s.tracks[chatID][query] = true
	return nil
}

func (s *memoryStore) RemoveTrack(_ context.Context, chatID int64, query string) (bool, error) {
	if !s.tracks[chatID][query] {
		return false, nil
	}
	delete(s.tracks[chatID], query)
	return true, nil
}

func (s *memoryStore) ListTracks(_ context.Context, chatID int64) ([]string, error) {
	var out []string
	for q := range s.tracks[chatID] {
		out = append(out, q)
	}
	return out, nil
}

func (s *memoryStore) TopTracks(_ context.Context, _ int) ([]domain.TrackCount, error) {
	counts := map[string]int{}
	for _, qs := range s.tracks {
		for q := range qs {
			counts[q]++
		}
	}

	var out []domain.TrackCount
	for q, n := range counts {
		out = append(out, domain.TrackCount{Query: q, Watchers: n})
	}
	return out, nil
}

type plainCodec struct{}

func (plainCodec) Encode(plain string) (string, error)  { return "enc:" + plain, nil }
func (plainCodec) Decode(stored string) (string, error) { return stored[len("enc:"):], nil }

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
	return string(domain.Network)
}

func (q *mockQueue) runAll(ctx context.Context) {
	tasks := q.tasks
	q.tasks = nil
	for _, task := range tasks {
		task.Run(ctx)
	}
}

type MockSocialClient struct {
	mock.Mock
}

func (m *MockSocialClient) VerifyCredentials(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSocialClient) UserProfile(ctx context.Context, screenName string) (domain.Profile, error) {
	args := m.Called(ctx, screenName)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func (m *MockSocialClient) LatestHomeStatus(ctx context.Context) (domain.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Status), args.Error(1)
}

func (m *MockSocialClient) Follow(ctx context.Context, screenName string) error {
	return m.Called(ctx, screenName).Error(0)
}

func (m *MockSocialClient) Unfollow(ctx context.Context, screenName string) error {
	return m.Called(ctx, screenName).Error(0)
}

func (m *MockSocialClient) Post(ctx context.Context, text string) (domain.Status, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.Status), args.Error(1)
}

func (m *MockSocialClient) Search(ctx context.Context, query string, limit int) ([]domain.Status, error) {
	args := m.Called(ctx, query, limit)
	results, _ := args.Get(0).([]domain.Status)
	return results, args.Error(1)
}

type mockFactory struct {
	client port.SocialClient
	creds  []domain.Credentials
}

func (f *mockFactory) Client(creds domain.Credentials) port.SocialClient {
	f.creds = append(f.creds, creds)
	return f.client
}

type fixture struct {
	messenger  *mockMessenger
	store      *memoryStore
	queue      *mockQueue
	client     *MockSocialClient
	factory    *mockFactory
	gateway    *service.UserGateway
	registry   *Registry
	dispatcher *Dispatcher
}

func newFixture() *fixture {
	f := &fixture{
		messenger: &mockMessenger{},
		store:     newMemoryStore(),
		queue:     &mockQueue{},
		client:    &MockSocialClient{},
	}
	f.factory = &mockFactory{client: f.client}
	f.gateway = service.NewUserGateway(f.store, plainCodec{})
	f.registry = NewBuiltins(Deps{
		Messenger:  f.messenger,
		Gateway:    f.gateway,
		Authorizer: service.NewAuthorizer(f.messenger),
		Social:     f.factory,
		Network:    f.queue,
		WebURL:     "https://social.example",
	})
	f.dispatcher = NewDispatcher(f.registry, f.messenger, f.gateway)
	return f
}

// user seeds a stored user, applies mod, and loads it back through the gateway.
func (f *fixture) user(t *testing.T, chatID int64, mod func(u *domain.User)) *domain.User {
	t.Helper()

	u := domain.User{ChatID: chatID, Active: true, Status: "available"}
	if mod != nil {
		mod(&u)
	}
	f.store.users[chatID] = u

	loaded, err := f.gateway.User(t.Context(), chatID)
	require.NoError(t, err)
	return loaded
}

func loggedIn(u *domain.User) {
	u.Username = "dustin"
	u.Password = "enc:secret"
}
