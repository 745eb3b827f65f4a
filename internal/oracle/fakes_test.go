package oracle

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/model"
	"github.com/portaltarot/oraculo/internal/repository"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*model.Profile
	order   []uuid.UUID // List returns profiles in insertion order
	listErr error
	xpErr   error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers(profiles ...*model.Profile) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*model.Profile{}}
	for _, p := range profiles {
		f.byID[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[p.ID] = p
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Username == username {
			c := *p
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, limit int) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Profile, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.byID[id])
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uuid.UUID, _ model.ProfileUpdate) (*model.Profile, error) {
	return f.GetByID(context.Background(), id)
}

func (f *fakeUsers) AddXP(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.xpErr != nil {
		return 0, f.xpErr
	}
	p, ok := f.byID[id]
	if !ok {
		return 0, errs.ErrNotFound
	}
	p.XP += delta
	return p.XP, nil
}

func (f *fakeUsers) AddOuros(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return 0, errs.ErrNotFound
	}
	p.Ouros += delta
	return p.Ouros, nil
}

type fakeConns struct {
	mu        sync.Mutex
	edges     []model.Connection
	createErr error
	listErr   error
	gate      chan struct{} // if set, Create blocks until the gate closes
	entered   chan struct{} // if set, closed once Create has been entered
}

var _ repository.ConnectionRepository = (*fakeConns)(nil)

func (f *fakeConns) Create(_ context.Context, c *model.Connection) error {
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.edges {
		if e.FollowerID == c.FollowerID && e.FollowingID == c.FollowingID {
			return errs.ErrAlreadyExists
		}
	}
	f.edges = append(f.edges, *c)
	return nil
}

func (f *fakeConns) ListFollowing(_ context.Context, followerID uuid.UUID) ([]model.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Connection
	for _, e := range f.edges {
		if e.FollowerID == followerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeConns) ListFollowers(_ context.Context, followingID uuid.UUID) ([]model.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Connection
	for _, e := range f.edges {
		if e.FollowingID == followingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeConns) Exists(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConns) Delete(_ context.Context, followerID, followingID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			f.edges = append(f.edges[:i], f.edges[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeConns) Mutuals(_ context.Context, userID uuid.UUID) ([]model.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Connection
	for _, e := range f.edges {
		if e.FollowerID != userID {
			continue
		}
		for _, rev := range f.edges {
			if rev.FollowerID == e.FollowingID && rev.FollowingID == userID {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeConns) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edges)
}

type fakeNotifs struct {
	mu        sync.Mutex
	created   []model.Notification
	createErr error
}

var _ repository.NotificationRepository = (*fakeNotifs)(nil)

func (f *fakeNotifs) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotifs) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotifs) MarkRead(_ context.Context, userID, notificationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.created {
		if f.created[i].ID == notificationID && f.created[i].UserID == userID {
			f.created[i].Read = true
			return nil
		}
	}
	return errs.ErrNotFound
}
