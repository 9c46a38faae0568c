package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rcliao/revisit/internal/model"
)

// MemoryStore is an in-memory Store and EventRecorder. Set SaveErr to make
// the next saves fail.
type MemoryStore struct {
	mu      sync.Mutex
	items   map[string]model.ReviewItem
	events  []model.ReviewEvent
	saves   int
	SaveErr error
}

// NewMemoryStore returns a store seeded with a copy of items.
func NewMemoryStore(items map[string]model.ReviewItem) *MemoryStore {
	return &MemoryStore{items: copyItems(items)}
}

func (s *MemoryStore) Load(ctx context.Context) (map[string]model.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items), nil
}

func (s *MemoryStore) Save(ctx context.Context, items map[string]model.ReviewItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.items = copyItems(items)
	s.saves++
	return nil
}

// Saves returns the number of successful saves.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemoryStore) RecordEvent(ctx context.Context, ev model.ReviewEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *MemoryStore) Events(ctx context.Context, topic string, limit int) ([]model.ReviewEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ReviewEvent
	for _, ev := range s.events {
		if topic == "" || ev.Topic == topic {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func copyItems(items map[string]model.ReviewItem) map[string]model.ReviewItem {
	out := make(map[string]model.ReviewItem, len(items))
	for k, v := range items {
		out[k] = v.Clone()
	}
	return out
}
