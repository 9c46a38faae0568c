package leitner

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/revisit/internal/model"
	"github.com/rcliao/revisit/internal/store"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// clock is a settable test clock.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

const day = 24 * time.Hour

func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore, *clock) {
	t.Helper()
	st := store.NewMemoryStore(nil)
	c := &clock{now: t0}
	e, err := New(context.Background(), st, WithClock(c.Now))
	require.NoError(t, err)
	return e, st, c
}

func TestScenarioAFreshTopic(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t)

	item, err := e.Add(ctx, "Calculus", "")
	require.NoError(t, err)
	assert.Equal(t, 0, item.IntervalIndex)
	assert.Nil(t, item.LastReview)
	assert.True(t, item.NextReview.Equal(t0.Add(day)))
	assert.Equal(t, 1, st.Saves())

	stats, ok := e.Stats("Calculus")
	require.True(t, ok)
	assert.Equal(t, 0, stats.IntervalIndex)
	assert.Equal(t, model.Learning, stats.MasteryLevel)
	assert.Equal(t, 1, stats.DaysUntilReview)
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.Equal(t, 1, stats.CurrentInterval)
	assert.Equal(t, "2025-06-16", stats.NextReviewDate)
}

func TestScenarioBAndCPromotionThenFailure(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)

	_, err := e.Add(ctx, "Calculus", "")
	require.NoError(t, err)

	for want := 1; want <= 5; want++ {
		item, err := e.Record(ctx, "Calculus", true)
		require.NoError(t, err)
		assert.Equal(t, want, item.IntervalIndex)
		assert.True(t, item.NextReview.Equal(c.now.Add(time.Duration(DefaultLadder[want])*day)))
		c.Advance(time.Hour)
	}

	stats, _ := e.Stats("Calculus")
	assert.Equal(t, 100.0, stats.SuccessRate)
	assert.Equal(t, model.Mastered, stats.MasteryLevel)
	assert.Equal(t, 5, stats.SuccessStreak)

	item, err := e.Record(ctx, "Calculus", false)
	require.NoError(t, err)
	assert.Equal(t, 4, item.IntervalIndex)
	assert.Equal(t, 0, item.SuccessStreak)
	assert.Equal(t, 5, item.TotalSuccesses)
	assert.Equal(t, 6, item.TotalReviews)
	assert.Equal(t, 6, item.ReviewCount)
	require.NotNil(t, item.LastReview)
	assert.True(t, item.LastReview.Equal(c.now))

	stats, _ = e.Stats("Calculus")
	assert.InDelta(t, 83.3, stats.SuccessRate, 0.05)
	assert.Equal(t, model.Advanced, stats.MasteryLevel)
	assert.Equal(t, 25, stats.CurrentInterval)
}

func TestScenarioDInvalidName(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := e.Add(ctx, name, "desc")
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
	assert.Empty(t, e.All())
	assert.Equal(t, 0, st.Saves())
}

func TestAddRejectsInvalidUTF8(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t)

	_, err := e.Add(ctx, "Calc\xff", "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = e.Add(ctx, "Calculus", "limits \xc3\x28")
	assert.ErrorIs(t, err, ErrInvalidDescription)

	assert.Empty(t, e.All())
	assert.Equal(t, 0, st.Saves())
}

func TestNamesSurviveFileReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "revisit.json")
	c := &clock{now: t0}

	fs, err := store.NewFileStore(path)
	require.NoError(t, err)
	e, err := New(ctx, fs, WithClock(c.Now))
	require.NoError(t, err)

	name := "Análisis \u00e9t\u00e9 \U0001F4D8"
	_, err = e.Add(ctx, name, "série")
	require.NoError(t, err)
	require.NoError(t, fs.Close())

	fs, err = store.NewFileStore(path)
	require.NoError(t, err)
	defer fs.Close()
	e, err = New(ctx, fs, WithClock(c.Now))
	require.NoError(t, err)

	item, ok := e.Get(name)
	require.True(t, ok)
	assert.Equal(t, "série", item.Description)
	_, err = e.Record(ctx, name, true)
	assert.NoError(t, err)
}

func TestScenarioEEmptyStore(t *testing.T) {
	e, _, _ := newTestEngine(t)

	assert.Empty(t, e.Due())
	assert.NotNil(t, e.Due())
	assert.Equal(t, model.Summary{}, e.Summary())
}

func TestAddDuplicate(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t)

	_, err := e.Add(ctx, "Calculus", "first")
	require.NoError(t, err)
	_, err = e.Add(ctx, "Calculus", "second")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	item, _ := e.Get("Calculus")
	assert.Equal(t, "first", item.Description)
	assert.Equal(t, 1, st.Saves())
}

func TestRecordNotFound(t *testing.T) {
	e, st, _ := newTestEngine(t)
	_, err := e.Record(context.Background(), "Nope", true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, st.Saves())
}

func TestFailureAtBoxZeroStaysAtZero(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)
	e.Add(ctx, "A", "")

	item, err := e.Record(ctx, "A", false)
	require.NoError(t, err)
	assert.Equal(t, 0, item.IntervalIndex)
	assert.True(t, item.NextReview.Equal(c.now.Add(day)))
}

func TestSuccessAtLastBoxStaysAtLast(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	e.Add(ctx, "A", "")

	for i := 0; i < 10; i++ {
		e.Record(ctx, "A", true)
	}
	item, _ := e.Get("A")
	assert.Equal(t, DefaultLadder.Last(), item.IntervalIndex)
	assert.Equal(t, 10, item.SuccessStreak)
}

func TestRandomReviewsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)
	e.Add(ctx, "A", "")

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		before, _ := e.Get("A")
		success := rng.Intn(3) > 0
		after, err := e.Record(ctx, "A", success)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, after.IntervalIndex, 0)
		assert.LessOrEqual(t, after.IntervalIndex, DefaultLadder.Last())
		assert.LessOrEqual(t, after.TotalSuccesses, after.TotalReviews)
		assert.Equal(t, after.ReviewCount, after.TotalReviews)
		if success {
			assert.GreaterOrEqual(t, after.IntervalIndex, before.IntervalIndex)
		} else {
			assert.LessOrEqual(t, after.IntervalIndex, before.IntervalIndex)
			assert.Equal(t, 0, after.SuccessStreak)
		}
		assert.True(t, after.NextReview.Equal(c.now.Add(DefaultLadder.Interval(after.IntervalIndex))))
		c.Advance(time.Duration(rng.Intn(48)) * time.Hour)
	}
}

func TestFailedSaveLeavesItemUnchanged(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t)
	e.Add(ctx, "A", "")
	e.Record(ctx, "A", true)
	before, _ := e.Get("A")

	st.SaveErr = store.ErrIO
	_, err := e.Record(ctx, "A", true)
	assert.ErrorIs(t, err, store.ErrIO)

	after, _ := e.Get("A")
	assert.Equal(t, before, after)

	_, err = e.Add(ctx, "B", "")
	assert.ErrorIs(t, err, store.ErrIO)
	_, ok := e.Get("B")
	assert.False(t, ok)

	removed, err := e.Remove(ctx, "A")
	assert.ErrorIs(t, err, store.ErrIO)
	assert.False(t, removed)
	_, ok = e.Get("A")
	assert.True(t, ok)
}

func TestEveryMutationSavesFullSnapshot(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t)

	e.Add(ctx, "A", "")
	e.Add(ctx, "B", "")
	e.Record(ctx, "A", true)
	e.Remove(ctx, "B")
	assert.Equal(t, 4, st.Saves())

	snap, _ := st.Load(ctx)
	require.Len(t, snap, 1)
	assert.Equal(t, 1, snap["A"].IntervalIndex)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t)
	e.Add(ctx, "A", "")

	removed, err := e.Remove(ctx, "A")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = e.Remove(ctx, "A")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, st.Saves())

	_, ok := e.Stats("A")
	assert.False(t, ok)
}

func TestDueOrderingAndIdempotence(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)

	e.Add(ctx, "first", "")
	c.Advance(time.Hour)
	e.Add(ctx, "second", "")
	c.Advance(time.Hour)
	e.Add(ctx, "later", "")
	e.Record(ctx, "later", true) // due in 3 days

	assert.Empty(t, e.Due())

	c.Advance(day)
	due := e.Due()
	require.Len(t, due, 2)
	assert.Equal(t, "first", due[0].TopicName)
	assert.Equal(t, "second", due[1].TopicName)
	assert.Equal(t, due, e.Due())
}

func TestDueIncludesExactBoundary(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)
	e.Add(ctx, "A", "")

	c.Advance(day - time.Nanosecond)
	assert.Empty(t, e.Due())
	c.Advance(time.Nanosecond)
	assert.Len(t, e.Due(), 1)
}

func TestUpcoming(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)

	e.Add(ctx, "tomorrow", "")
	e.Add(ctx, "in3", "")
	e.Record(ctx, "in3", true)
	e.Add(ctx, "in5", "")
	e.Record(ctx, "in5", true)
	e.Record(ctx, "in5", true)

	up := e.Upcoming(3)
	require.Len(t, up, 2)
	assert.Equal(t, "tomorrow", up[0].TopicName)
	assert.Equal(t, "in3", up[1].TopicName)

	assert.Len(t, e.Upcoming(7), 3)
	assert.Empty(t, e.Upcoming(0))

	// Very wide windows must not wrap the cutoff into the past.
	assert.Len(t, e.Upcoming(200000), 3)
	assert.Len(t, e.Upcoming(math.MaxInt), 3)

	// Due topics are not upcoming.
	c.Advance(day)
	up = e.Upcoming(7)
	require.Len(t, up, 2)
	assert.Equal(t, "in3", up[0].TopicName)
}

func TestStatsDaysUntilReviewFloorsAndClamps(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)
	e.Add(ctx, "A", "")
	e.Record(ctx, "A", true) // 3 days

	c.Advance(12 * time.Hour)
	st, _ := e.Stats("A")
	assert.Equal(t, 2, st.DaysUntilReview)

	c.Advance(10 * day)
	st, _ = e.Stats("A")
	assert.Equal(t, 0, st.DaysUntilReview)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)

	e.Add(ctx, "master", "")
	for i := 0; i < 5; i++ {
		e.Record(ctx, "master", true)
	}
	e.Add(ctx, "weak", "")
	e.Record(ctx, "weak", false)
	e.Record(ctx, "weak", false)
	e.Add(ctx, "fresh", "")

	s := e.Summary()
	assert.Equal(t, 3, s.TotalTopics)
	assert.Equal(t, 0, s.DueNow)
	assert.Equal(t, 0, s.DueToday)
	assert.Equal(t, 1, s.MasteredTopics)
	assert.InDelta(t, 71.4, s.AverageSuccessRate, 0.05) // 5 of 7

	// 13:00 on the next day: weak and fresh (due 10:00) are now due.
	c.Advance(day + 3*time.Hour)
	s = e.Summary()
	assert.Equal(t, 2, s.DueNow)
	assert.Equal(t, 2, s.DueToday)
}

func TestSummaryDueTodayCountsLaterToday(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)
	e.Add(ctx, "A", "")

	// 09:00 next day: due at 10:00, later today.
	c.Advance(23 * time.Hour)
	s := e.Summary()
	assert.Equal(t, 0, s.DueNow)
	assert.Equal(t, 1, s.DueToday)
}

func TestAllOrderedByName(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	for _, n := range []string{"b", "c", "a"} {
		e.Add(ctx, n, "")
	}
	all := e.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].TopicName, all[1].TopicName, all[2].TopicName})
}

func TestReturnedItemsAreCopies(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	item, _ := e.Add(ctx, "A", "")
	item.IntervalIndex = 6

	got, _ := e.Get("A")
	assert.Equal(t, 0, got.IntervalIndex)
}

func TestRecordWritesHistory(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t)
	e.Add(ctx, "A", "")
	e.Record(ctx, "A", true)
	c.Advance(time.Minute)
	e.Record(ctx, "A", false)

	events, err := st.Events(ctx, "A", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].Success)
	assert.Equal(t, 1, events[0].IntervalBefore)
	assert.Equal(t, 0, events[0].IntervalAfter)
	assert.NotEmpty(t, events[0].ID)
}

func TestHistoryKeepsOrderWithinOneInstant(t *testing.T) {
	ctx := context.Background()
	e, st, _ := newTestEngine(t)
	e.Add(ctx, "A", "")

	// The clock does not move, so every event shares one millisecond.
	for i := 0; i < 20; i++ {
		_, err := e.Record(ctx, "A", i%2 == 0)
		require.NoError(t, err)
	}

	events, err := st.Events(ctx, "A", 0)
	require.NoError(t, err)
	require.Len(t, events, 20)
	for i, ev := range events {
		// Newest first: the last review (i=19) was a failure.
		assert.Equal(t, (19-i)%2 == 0, ev.Success, "event %d", i)
	}
}

func TestNewRejectsInvalidSnapshot(t *testing.T) {
	good := model.ReviewItem{TopicName: "A", NextReview: t0, CreatedAt: t0}

	testCases := []struct {
		name  string
		items map[string]model.ReviewItem
	}{
		{"index above ladder", map[string]model.ReviewItem{"A": withIndex(good, 7)}},
		{"negative index", map[string]model.ReviewItem{"A": withIndex(good, -1)}},
		{"key mismatch", map[string]model.ReviewItem{"B": good}},
		{"successes exceed reviews", map[string]model.ReviewItem{"A": func() model.ReviewItem {
			it := good
			it.TotalSuccesses = 2
			it.TotalReviews = 1
			return it
		}()}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(context.Background(), store.NewMemoryStore(tc.items))
			assert.True(t, errors.Is(err, store.ErrCorruptState), "got %v", err)
		})
	}
}

func withIndex(it model.ReviewItem, i int) model.ReviewItem {
	it.IntervalIndex = i
	return it
}

func TestNewLoadsExistingSnapshot(t *testing.T) {
	items := map[string]model.ReviewItem{
		"A": {TopicName: "A", NextReview: t0.Add(-day), CreatedAt: t0.Add(-2 * day), IntervalIndex: 3,
			TotalReviews: 4, TotalSuccesses: 3, ReviewCount: 4, SuccessStreak: 3},
	}
	e, err := New(context.Background(), store.NewMemoryStore(items), WithClock(func() time.Time { return t0 }))
	require.NoError(t, err)

	due := e.Due()
	require.Len(t, due, 1)
	assert.Equal(t, 3, due[0].IntervalIndex)
}

func TestWithLadder(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: t0}
	e, err := New(ctx, store.NewMemoryStore(nil), WithClock(c.Now), WithLadder(Ladder{2, 4}))
	require.NoError(t, err)

	e.Add(ctx, "A", "")
	e.Record(ctx, "A", true)
	item, _ := e.Record(ctx, "A", true)
	assert.Equal(t, 1, item.IntervalIndex)
	assert.True(t, item.NextReview.Equal(t0.Add(4*day)))

	_, err = New(ctx, store.NewMemoryStore(nil), WithLadder(Ladder{3, 3}))
	assert.ErrorIs(t, err, ErrInvalidLadder)
}
