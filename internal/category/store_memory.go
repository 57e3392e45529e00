package category

import (
	"context"
	"sort"
	"sync"

	"confide/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	categories map[string]*Category
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{categories: make(map[string]*Category)}
}

func (s *InMemoryStore) Create(_ context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.categories[c.Name]; exists {
		return sentinel.ErrAlreadyUsed
	}
	copied := *c
	s.categories[c.Name] = &copied
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Category, 0, len(s.categories))
	for _, c := range s.categories {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
