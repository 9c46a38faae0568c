package leitner

import (
	"context"
	"fmt"

	"github.com/rcliao/revisit/internal/model"
	"github.com/rcliao/revisit/internal/store"
)

// Import merges a snapshot into the schedule with one save. Existing topics
// are kept unless replace is set, in which case the snapshot becomes the
// whole schedule. It returns the number of topics taken from the snapshot.
func (e *Engine) Import(ctx context.Context, items map[string]model.ReviewItem, replace bool) (int, error) {
	for name, it := range items {
		if it.TopicName != name {
			return 0, fmt.Errorf("%w: key %q holds topic %q", store.ErrCorruptState, name, it.TopicName)
		}
		if err := it.Validate(e.ladder.Len()); err != nil {
			return 0, fmt.Errorf("%w: %v", store.ErrCorruptState, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(map[string]model.ReviewItem, len(e.items)+len(items))
	if !replace {
		for name, it := range e.items {
			next[name] = it.Clone()
		}
	}
	imported := 0
	for name, it := range items {
		if _, exists := next[name]; exists {
			continue
		}
		next[name] = it.Clone()
		imported++
	}

	if err := e.store.Save(ctx, next); err != nil {
		return 0, err
	}
	e.items = make(map[string]*model.ReviewItem, len(next))
	for name, it := range next {
		item := it
		e.items[name] = &item
	}
	e.log.Debug("snapshot imported", "imported", imported, "total", len(next))
	return imported, nil
}
