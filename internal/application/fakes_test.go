package application

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
)

// memUsers is an in-memory UserRepository with the same conditional-write
// contract as the Postgres implementation.
type memUsers struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]entity.User)}
}

func (m *memUsers) put(u entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.users[u.ID] = cloneUser(*u)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Version != u.Version {
		return repo.ErrConflict
	}
	u.Version++
	m.users[u.ID] = cloneUser(*u)
	return nil
}

// memPosts mirrors memUsers for posts.
type memPosts struct {
	mu    sync.Mutex
	posts map[string]entity.Post
}

func newMemPosts() *memPosts {
	return &memPosts{posts: make(map[string]entity.Post)}
}

func (m *memPosts) put(p entity.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p
}

func (m *memPosts) Create(_ context.Context, p *entity.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.posts[p.ID] = clonePost(*p)
	return nil
}

func (m *memPosts) GetByID(_ context.Context, id string) (*entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := clonePost(p)
	return &c, nil
}

func (m *memPosts) ListByOwner(_ context.Context, ownerID string, limit int) ([]entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Post, 0)
	for _, p := range m.posts {
		if p.OwnerID == ownerID && len(out) < limit {
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

func (m *memPosts) List(_ context.Context, f repo.PostFilter) ([]entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owners := make(map[string]struct{}, len(f.OwnerIDs))
	for _, id := range f.OwnerIDs {
		owners[id] = struct{}{}
	}
	matched := make([]entity.Post, 0)
	for _, p := range m.posts {
		if len(owners) > 0 {
			if _, ok := owners[p.OwnerID]; !ok {
				continue
			}
		}
		if f.Continent != "" && p.Continent != f.Continent {
			continue
		}
		matched = append(matched, clonePost(p))
	}
	if f.Skip >= len(matched) {
		return []entity.Post{}, nil
	}
	matched = matched[f.Skip:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (m *memPosts) Update(_ context.Context, p *entity.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.posts[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Version != p.Version {
		return repo.ErrConflict
	}
	p.Version++
	m.posts[p.ID] = clonePost(*p)
	return nil
}

func (m *memPosts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func cloneUser(u entity.User) entity.User {
	u.Following = append([]string(nil), u.Following...)
	u.LikedPosts = append([]string(nil), u.LikedPosts...)
	u.Notifications = append([]entity.Notification(nil), u.Notifications...)
	return u
}

func clonePost(p entity.Post) entity.Post {
	p.Likes = append([]string(nil), p.Likes...)
	p.Comments = append([]entity.Comment(nil), p.Comments...)
	return p
}

// recordingDispatcher captures every push so tests can assert on dispatch
// behavior without a live hub.
type recordingDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
}

type dispatchCall struct {
	UserID string
	Log    []entity.Notification
}

func (d *recordingDispatcher) DispatchNotifications(userID string, log []entity.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{UserID: userID, Log: append([]entity.Notification(nil), log...)})
}

func (d *recordingDispatcher) all() []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dispatchCall(nil), d.calls...)
}

// recordingPublisher captures comment change events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, body)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
