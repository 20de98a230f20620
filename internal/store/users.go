package store

import (
	"sort"
	"sync"

	"github.com/hotelier/hotelier-server/internal/model"
)

// UserStore owns the registered-user map. Username is the globally unique key.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// NewUserStore returns an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User)}
}

// Register inserts a new user. ErrUserExists if the username is taken.
func (s *UserStore) Register(username, credentialHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	u := model.NewUser(username, credentialHash, 0)
	s.users[username] = &u
	return nil
}

// Put inserts or replaces a user wholesale; used when loading from disk.
func (s *UserStore) Put(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.users[u.Username] = &cp
}

// Get returns a copy of the user, if registered.
func (s *UserStore) Get(username string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

// IncrementReviews bumps the user's review count (and badge) under the write
// lock and returns the updated copy.
func (s *UserStore) IncrementReviews(username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	u.IncrementReviews()
	return *u, nil
}

// Snapshot returns all users, sorted by username for deterministic output.
func (s *UserStore) Snapshot() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
