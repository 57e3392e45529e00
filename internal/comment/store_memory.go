package comment

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"confide/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	comments map[uuid.UUID]*Comment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{comments: make(map[uuid.UUID]*Comment)}
}

func (s *InMemoryStore) Create(_ context.Context, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = cloneComment(c)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneComment(c), nil
}

func (s *InMemoryStore) ListByConfession(_ context.Context, confessionID uuid.UUID, page, size int) ([]*Comment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Comment
	for _, c := range s.comments {
		if c.ConfessionID == confessionID {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * size
	if start >= total {
		return []*Comment{}, total, nil
	}
	end := min(start+size, total)

	out := make([]*Comment, 0, end-start)
	for _, c := range matched[start:end] {
		copied := cloneComment(c)
		if c.QuotedCommentID != nil {
			// Dangling quotes resolve to no preview, not an error.
			if quoted, ok := s.comments[*c.QuotedCommentID]; ok {
				copied.QuotedComment = &QuotedPreview{Text: quoted.Text, Username: quoted.Username}
			}
		}
		out = append(out, copied)
	}
	return out, total, nil
}

func (s *InMemoryStore) Update(_ context.Context, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.comments[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := cloneComment(c)
	updated.Reactions = existing.Reactions
	s.comments[c.ID] = updated
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *InMemoryStore) AdjustReaction(_ context.Context, id uuid.UUID, oldEmoji, newEmoji string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if oldEmoji != "" {
		if c.Reactions[oldEmoji] <= 1 {
			delete(c.Reactions, oldEmoji)
		} else {
			c.Reactions[oldEmoji]--
		}
	}
	if newEmoji != "" {
		c.Reactions[newEmoji]++
	}
	return nil
}

func cloneComment(c *Comment) *Comment {
	copied := *c
	copied.Reactions = make(map[string]int, len(c.Reactions))
	for k, v := range c.Reactions {
		copied.Reactions[k] = v
	}
	if c.AuthorID != nil {
		authorID := *c.AuthorID
		copied.AuthorID = &authorID
	}
	if c.QuotedCommentID != nil {
		quotedID := *c.QuotedCommentID
		copied.QuotedCommentID = &quotedID
	}
	copied.QuotedComment = nil
	return &copied
}
