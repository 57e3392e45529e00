package confession

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"confide/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	confessions map[uuid.UUID]*Confession
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{confessions: make(map[uuid.UUID]*Confession)}
}

func (s *InMemoryStore) Create(_ context.Context, c *Confession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confessions[c.ID] = cloneConfession(c)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Confession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.confessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneConfession(c), nil
}

func (s *InMemoryStore) List(_ context.Context, f Filter) ([]*Confession, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Confession
	for _, c := range s.confessions {
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.AuthorID != nil && (c.AuthorID == nil || *c.AuthorID != *f.AuthorID) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (f.Page - 1) * f.Size
	if start >= total {
		return []*Confession{}, total, nil
	}
	end := min(start+f.Size, total)

	out := make([]*Confession, 0, end-start)
	for _, c := range matched[start:end] {
		out = append(out, cloneConfession(c))
	}
	return out, total, nil
}

func (s *InMemoryStore) Update(_ context.Context, c *Confession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.confessions[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := cloneConfession(c)
	// Aggregates stay owned by the Adjust methods.
	updated.Reactions = existing.Reactions
	updated.CommentsCount = existing.CommentsCount
	s.confessions[c.ID] = updated
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.confessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.confessions, id)
	return nil
}

func (s *InMemoryStore) Nearby(_ context.Context, lon, lat, maxMeters float64) ([]*Confession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type withDistance struct {
		c *Confession
		d float64
	}
	var matched []withDistance
	for _, c := range s.confessions {
		d := haversineMeters(lat, lon, c.Location.Latitude, c.Location.Longitude)
		if d <= maxMeters {
			matched = append(matched, withDistance{c: c, d: d})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].d < matched[j].d })

	out := make([]*Confession, 0, len(matched))
	for _, m := range matched {
		out = append(out, cloneConfession(m.c))
	}
	return out, nil
}

func (s *InMemoryStore) AdjustReaction(_ context.Context, id uuid.UUID, oldEmoji, newEmoji string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confessions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	adjustEmojiMap(c.Reactions, oldEmoji, newEmoji)
	return nil
}

func (s *InMemoryStore) AdjustComments(_ context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confessions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.CommentsCount += delta
	return nil
}

// adjustEmojiMap applies one ledger transition to an aggregate map. Counts
// never go below zero: a decrement that would reach zero deletes the key.
func adjustEmojiMap(reactions map[string]int, oldEmoji, newEmoji string) {
	if oldEmoji != "" {
		if reactions[oldEmoji] <= 1 {
			delete(reactions, oldEmoji)
		} else {
			reactions[oldEmoji]--
		}
	}
	if newEmoji != "" {
		reactions[newEmoji]++
	}
}

func cloneConfession(c *Confession) *Confession {
	copied := *c
	copied.Reactions = make(map[string]int, len(c.Reactions))
	for k, v := range c.Reactions {
		copied.Reactions[k] = v
	}
	if c.AuthorID != nil {
		authorID := *c.AuthorID
		copied.AuthorID = &authorID
	}
	return &copied
}

const earthRadiusMeters = 6371000

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
