package users

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/storage"
)

var errBoom = errors.New("boom")

// memStore is an in-memory stand-in for both repositories.
type memStore struct {
	users       map[int64]models.User
	profiles    map[int64]models.Profile
	nextUser    int64
	nextProfile int64

	inserts int
	saves   int

	findErr   error
	saveErr   error
	deleteErr error
	listErr   error
	// uniqueBypass hides existing usernames from FindByUsername to simulate
	// a concurrent insert slipping past the pre-check.
	uniqueBypass bool
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]models.User{}, profiles: map[int64]models.Profile{}}
}

func (m *memStore) load(u models.User, rel storage.Relations) *models.User {
	out := u
	out.Roles = append([]string(nil), u.Roles...)
	out.Profile = nil
	out.Posts = nil
	if rel.Profile && u.ProfileID != nil {
		p := m.profiles[*u.ProfileID]
		out.Profile = &p
	}
	if rel.Posts {
		out.Posts = []models.Post{}
	}
	return &out
}

func (m *memStore) FindByID(_ context.Context, id int64, rel storage.Relations) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return m.load(u, rel), nil
}

func (m *memStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.uniqueBypass {
		return nil, storage.ErrNotFound
	}
	for _, u := range m.users {
		if u.Username == username {
			return m.load(u, storage.Relations{}), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) List(_ context.Context, rel storage.Relations) ([]models.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []models.User
	for _, id := range ids {
		out = append(out, *m.load(m.users[id], rel))
	}
	return out, nil
}

func (m *memStore) Save(_ context.Context, user *models.User) (*models.User, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	for _, other := range m.users {
		if other.Username == user.Username && other.ID != user.ID {
			return nil, storage.ErrAlreadyExists
		}
	}
	m.saves++
	if user.ID == 0 {
		m.nextUser++
		user.ID = m.nextUser
		user.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		m.inserts++
	} else if existing, ok := m.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		return nil, storage.ErrNotFound
	}
	stored := *user
	stored.Roles = append([]string(nil), user.Roles...)
	m.users[user.ID] = stored
	return user, nil
}

func (m *memStore) DeleteByID(_ context.Context, id int64) (storage.DeleteResult, error) {
	if m.deleteErr != nil {
		return storage.DeleteResult{}, m.deleteErr
	}
	u, ok := m.users[id]
	if !ok {
		return storage.DeleteResult{Affected: 0}, nil
	}
	if u.ProfileID != nil {
		delete(m.profiles, *u.ProfileID)
	}
	delete(m.users, id)
	return storage.DeleteResult{Affected: 1}, nil
}

// memProfiles adapts memStore to storage.ProfileRepository.
type memProfiles struct {
	m       *memStore
	saveErr error
}

func (p memProfiles) Save(_ context.Context, profile *models.Profile) (*models.Profile, error) {
	if p.saveErr != nil {
		return nil, p.saveErr
	}
	if profile.ID == 0 {
		p.m.nextProfile++
		profile.ID = p.m.nextProfile
	}
	p.m.profiles[profile.ID] = *profile
	return profile, nil
}

// recordingTx counts WithinTx calls and runs fn inline.
type recordingTx struct {
	calls int
}

func (r *recordingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}
