package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"confide/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*User
	byName  map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:  make(map[uuid.UUID]*User),
		byName: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Username)
	if _, taken := s.byName[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	copied := *user
	s.users[user.ID] = &copied
	s.byName[key] = user.ID
	return nil
}

func (s *InMemoryStore) UsernameTaken(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.byName[strings.ToLower(username)]
	return taken, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}
