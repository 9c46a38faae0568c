package leitner

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/revisit/internal/logger"
	"github.com/rcliao/revisit/internal/model"
	"github.com/rcliao/revisit/internal/store"
)

// Engine schedules reviews for a single learner. All methods are safe for
// concurrent use; calls are serialized so there is exactly one writer.
type Engine struct {
	mu      sync.Mutex
	items   map[string]*model.ReviewItem
	store   store.Store
	ladder  Ladder
	now     func() time.Time
	log     *logger.Logger
	entropy io.Reader
}

// maxUpcomingDays is the widest window whose cutoff fits in a time.Duration.
const maxUpcomingDays = int(math.MaxInt64 / int64(24*time.Hour))

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock. Tests use it to pin time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLadder replaces DefaultLadder.
func WithLadder(l Ladder) Option {
	return func(e *Engine) { e.ladder = l }
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New loads the snapshot from st and returns an engine that owns it.
// A snapshot that violates the item schema fails with store.ErrCorruptState.
func New(ctx context.Context, st store.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		items:   map[string]*model.ReviewItem{},
		store:   st,
		ladder:  DefaultLadder,
		now:     time.Now,
		log:     logger.Nop(),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, o := range opts {
		o(e)
	}
	if err := e.ladder.validate(); err != nil {
		return nil, err
	}

	loaded, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	for name, it := range loaded {
		if it.TopicName != name {
			return nil, fmt.Errorf("%w: key %q holds topic %q", store.ErrCorruptState, name, it.TopicName)
		}
		if err := it.Validate(e.ladder.Len()); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrCorruptState, err)
		}
		item := it.Clone()
		e.items[name] = &item
	}
	e.log.Debug("engine loaded", "topics", len(e.items))
	return e, nil
}

// Ladder returns the interval ladder in use.
func (e *Engine) Ladder() Ladder { return e.ladder }

// Add creates a topic in box 0, due one ladder step from now.
func (e *Engine) Add(ctx context.Context, name, description string) (*model.ReviewItem, error) {
	// Names are map keys and JSON object keys; invalid UTF-8 would not survive a reload.
	if strings.TrimSpace(name) == "" || !utf8.ValidString(name) {
		return nil, ErrInvalidName
	}
	if !utf8.ValidString(description) {
		return nil, ErrInvalidDescription
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.items[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	now := e.now()
	item := model.ReviewItem{
		TopicName:   name,
		Description: description,
		NextReview:  now.Add(e.ladder.Interval(0)),
		CreatedAt:   now,
	}
	if err := e.commit(ctx, &item, ""); err != nil {
		return nil, err
	}
	e.log.Debug("topic added", "topic", name)

	out := item.Clone()
	return &out, nil
}

// Record applies one review outcome. Success promotes the topic one box,
// failure demotes it one box and resets the streak. The updated item becomes
// visible only after the snapshot has been saved.
func (e *Engine) Record(ctx context.Context, name string, success bool) (*model.ReviewItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, ok := e.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	now := e.now()
	next := cur.Clone()
	before := next.IntervalIndex

	next.ReviewCount++
	next.TotalReviews++
	if success {
		next.TotalSuccesses++
		next.SuccessStreak++
		next.IntervalIndex = e.ladder.Clamp(next.IntervalIndex + 1)
	} else {
		next.SuccessStreak = 0
		next.IntervalIndex = e.ladder.Clamp(next.IntervalIndex - 1)
	}
	next.LastReview = &now
	next.NextReview = now.Add(e.ladder.Interval(next.IntervalIndex))

	if err := e.commit(ctx, &next, ""); err != nil {
		return nil, err
	}
	e.log.Debug("review recorded", "topic", name, "success", success,
		"interval_before", before, "interval_after", next.IntervalIndex)

	e.recordEvent(ctx, model.ReviewEvent{
		ID:             ulid.MustNew(ulid.Timestamp(now), e.entropy).String(),
		Topic:          name,
		Success:        success,
		IntervalBefore: before,
		IntervalAfter:  next.IntervalIndex,
		ReviewedAt:     now,
	})

	out := next.Clone()
	return &out, nil
}

// Remove deletes a topic. It reports whether a deletion happened.
func (e *Engine) Remove(ctx context.Context, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.items[name]; !ok {
		return false, nil
	}
	if err := e.commit(ctx, nil, name); err != nil {
		return false, err
	}
	e.log.Debug("topic removed", "topic", name)
	return true, nil
}

// commit saves the store with put applied (or drop removed) and swaps the
// change into memory only if the save succeeds.
func (e *Engine) commit(ctx context.Context, put *model.ReviewItem, drop string) error {
	snap := make(map[string]model.ReviewItem, len(e.items)+1)
	for name, it := range e.items {
		if name == drop {
			continue
		}
		snap[name] = it.Clone()
	}
	if put != nil {
		snap[put.TopicName] = put.Clone()
	}

	if err := e.store.Save(ctx, snap); err != nil {
		return err
	}

	if put != nil {
		item := put.Clone()
		e.items[put.TopicName] = &item
	}
	if drop != "" {
		delete(e.items, drop)
	}
	return nil
}

func (e *Engine) recordEvent(ctx context.Context, ev model.ReviewEvent) {
	rec, ok := e.store.(store.EventRecorder)
	if !ok {
		return
	}
	// The snapshot is already saved; a lost history row is logged, not fatal.
	if err := rec.RecordEvent(ctx, ev); err != nil {
		e.log.Warn("record review event", "topic", ev.Topic, "error", err)
	}
}

// Get returns a copy of one item.
func (e *Engine) Get(name string) (*model.ReviewItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	it, ok := e.items[name]
	if !ok {
		return nil, false
	}
	out := it.Clone()
	return &out, true
}

// Due returns every topic whose next review is at or before now, most
// overdue first.
func (e *Engine) Due() []model.ReviewItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.due(e.now())
}

func (e *Engine) due(now time.Time) []model.ReviewItem {
	return e.selectSorted(func(it *model.ReviewItem) bool {
		return !it.NextReview.After(now)
	})
}

// Upcoming returns topics due in (now, now+daysAhead], soonest first.
func (e *Engine) Upcoming(daysAhead int) []model.ReviewItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	if daysAhead > maxUpcomingDays {
		daysAhead = maxUpcomingDays
	}
	now := e.now()
	cutoff := now.Add(time.Duration(daysAhead) * 24 * time.Hour)
	return e.selectSorted(func(it *model.ReviewItem) bool {
		return it.NextReview.After(now) && !it.NextReview.After(cutoff)
	})
}

func (e *Engine) selectSorted(keep func(*model.ReviewItem) bool) []model.ReviewItem {
	out := []model.ReviewItem{}
	for _, it := range e.items {
		if keep(it) {
			out = append(out, it.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextReview.Equal(out[j].NextReview) {
			return out[i].NextReview.Before(out[j].NextReview)
		}
		return out[i].TopicName < out[j].TopicName
	})
	return out
}

// Stats returns the statistics of one topic, or false if it does not exist.
func (e *Engine) Stats(name string) (*model.TopicStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	it, ok := e.items[name]
	if !ok {
		return nil, false
	}
	st := e.stats(it, e.now())
	return &st, true
}

// All returns statistics for every topic ordered by name.
func (e *Engine) All() []model.TopicStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	names := make([]string, 0, len(e.items))
	for name := range e.items {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.TopicStats, 0, len(names))
	for _, name := range names {
		out = append(out, e.stats(e.items[name], now))
	}
	return out
}

func (e *Engine) stats(it *model.ReviewItem, now time.Time) model.TopicStats {
	rate := it.SuccessRate()
	days := int(math.Floor(it.NextReview.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return model.TopicStats{
		TopicName:       it.TopicName,
		Description:     it.Description,
		SuccessRate:     round1(rate),
		SuccessStreak:   it.SuccessStreak,
		TotalReviews:    it.TotalReviews,
		IntervalIndex:   it.IntervalIndex,
		CurrentInterval: e.ladder.Days(it.IntervalIndex),
		DaysUntilReview: days,
		NextReviewDate:  it.NextReview.Format("2006-01-02"),
		MasteryLevel:    Classify(it.IntervalIndex, rate),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Snapshot returns a copy of every item keyed by topic name.
func (e *Engine) Snapshot() map[string]model.ReviewItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]model.ReviewItem, len(e.items))
	for name, it := range e.items {
		out[name] = it.Clone()
	}
	return out
}
