package reaction

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"confide/pkg/platform/sentinel"
)

type ledgerKey struct {
	kind      SubjectKind
	subjectID uuid.UUID
	userID    uuid.UUID
}

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[ledgerKey]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[ledgerKey]*Record)}
}

func (s *InMemoryStore) Find(_ context.Context, kind SubjectKind, subjectID, userID uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[ledgerKey{kind, subjectID, userID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *InMemoryStore) Create(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ledgerKey{r.SubjectKind, r.SubjectID, r.UserID}
	if _, ok := s.records[key]; ok {
		return sentinel.ErrConflict
	}
	copied := *r
	s.records[key] = &copied
	return nil
}

func (s *InMemoryStore) UpdateEmoji(_ context.Context, kind SubjectKind, subjectID, userID uuid.UUID, emoji string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[ledgerKey{kind, subjectID, userID}]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Emoji = emoji
	r.UpdatedAt = updatedAt
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, kind SubjectKind, subjectID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ledgerKey{kind, subjectID, userID}
	if _, ok := s.records[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

func (s *InMemoryStore) DeleteBySubject(_ context.Context, kind SubjectKind, subjectID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.records {
		if key.kind == kind && key.subjectID == subjectID {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}
