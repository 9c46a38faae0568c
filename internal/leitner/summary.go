package leitner

import (
	"time"

	"github.com/rcliao/revisit/internal/model"
)

// Summary aggregates counts across all topics. Nothing is cached.
func (e *Engine) Summary() model.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	y, m, d := now.Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())

	s := model.Summary{
		TotalTopics: len(e.items),
		DueNow:      len(e.due(now)),
	}

	var reviews, successes int
	for _, it := range e.items {
		if it.NextReview.Before(tomorrow) {
			s.DueToday++
		}
		if Classify(it.IntervalIndex, it.SuccessRate()) == model.Mastered {
			s.MasteredTopics++
		}
		reviews += it.TotalReviews
		successes += it.TotalSuccesses
	}
	if reviews > 0 {
		s.AverageSuccessRate = round1(float64(successes) / float64(reviews) * 100)
	}
	return s
}
