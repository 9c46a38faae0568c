// Package model defines the core review scheduling data types.
package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ReviewItem is the scheduling record for one topic.
type ReviewItem struct {
	TopicName      string     `json:"topic_name"`
	Description    string     `json:"description"`
	LastReview     *time.Time `json:"last_review"`
	NextReview     time.Time  `json:"next_review"`
	IntervalIndex  int        `json:"interval_index"`
	ReviewCount    int        `json:"review_count"`
	SuccessStreak  int        `json:"success_streak"`
	TotalSuccesses int        `json:"total_successes"`
	TotalReviews   int        `json:"total_reviews"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Clone returns a deep copy of the item.
func (r ReviewItem) Clone() ReviewItem {
	out := r
	if r.LastReview != nil {
		t := *r.LastReview
		out.LastReview = &t
	}
	return out
}

// SuccessRate returns total_successes / total_reviews as a percentage, or 0
// when the topic has never been reviewed.
func (r ReviewItem) SuccessRate() float64 {
	if r.TotalReviews == 0 {
		return 0
	}
	return float64(r.TotalSuccesses) / float64(r.TotalReviews) * 100
}

// Validate checks the record against the schema. ladderLen bounds IntervalIndex.
func (r ReviewItem) Validate(ladderLen int) error {
	switch {
	case strings.TrimSpace(r.TopicName) == "":
		return fmt.Errorf("topic name is empty")
	case !utf8.ValidString(r.TopicName):
		return fmt.Errorf("topic %q: name is not valid UTF-8", r.TopicName)
	case !utf8.ValidString(r.Description):
		return fmt.Errorf("topic %q: description is not valid UTF-8", r.TopicName)
	case r.NextReview.IsZero():
		return fmt.Errorf("topic %q: next_review is missing", r.TopicName)
	case r.CreatedAt.IsZero():
		return fmt.Errorf("topic %q: created_at is missing", r.TopicName)
	case r.IntervalIndex < 0 || r.IntervalIndex >= ladderLen:
		return fmt.Errorf("topic %q: interval_index %d out of range [0, %d]", r.TopicName, r.IntervalIndex, ladderLen-1)
	case r.ReviewCount < 0 || r.TotalReviews < 0 || r.TotalSuccesses < 0 || r.SuccessStreak < 0:
		return fmt.Errorf("topic %q: negative counter", r.TopicName)
	case r.TotalSuccesses > r.TotalReviews:
		return fmt.Errorf("topic %q: total_successes %d exceeds total_reviews %d", r.TopicName, r.TotalSuccesses, r.TotalReviews)
	case r.SuccessStreak > r.TotalSuccesses:
		return fmt.Errorf("topic %q: success_streak %d exceeds total_successes %d", r.TopicName, r.SuccessStreak, r.TotalSuccesses)
	}
	return nil
}

// TopicStats is the per-topic view handed to reporting callers.
type TopicStats struct {
	TopicName       string       `json:"topic_name"`
	Description     string       `json:"description"`
	SuccessRate     float64      `json:"success_rate"`
	SuccessStreak   int          `json:"success_streak"`
	TotalReviews    int          `json:"total_reviews"`
	IntervalIndex   int          `json:"interval_index"`
	CurrentInterval int          `json:"current_interval"` // days
	DaysUntilReview int          `json:"days_until_review"`
	NextReviewDate  string       `json:"next_review_date"`
	MasteryLevel    MasteryLevel `json:"mastery_level"`
}

// Summary aggregates statistics across every topic.
type Summary struct {
	TotalTopics        int     `json:"total_topics"`
	DueNow             int     `json:"due_now"`
	DueToday           int     `json:"due_today"`
	MasteredTopics     int     `json:"mastered_topics"`
	AverageSuccessRate float64 `json:"average_success_rate"`
}

// ReviewEvent is one entry of the review history log.
type ReviewEvent struct {
	ID             string    `json:"id" db:"id"`
	Topic          string    `json:"topic" db:"topic"`
	Success        bool      `json:"success" db:"success"`
	IntervalBefore int       `json:"interval_before" db:"interval_before"`
	IntervalAfter  int       `json:"interval_after" db:"interval_after"`
	ReviewedAt     time.Time `json:"reviewed_at" db:"reviewed_at"`
}
