package leitner

import "github.com/rcliao/revisit/internal/model"

// Classify derives the mastery level from an interval index and a success
// rate in percent. Rows are evaluated top-down; the first match wins.
//
// The index moves at most one box per review while the rate is cumulative,
// so a single failure deep in the ladder can drop the level by more than one
// step (Mastered at box 5 becomes Advanced at box 4).
func Classify(intervalIndex int, successRate float64) model.MasteryLevel {
	switch {
	case intervalIndex >= 5 && successRate >= 80:
		return model.Mastered
	case intervalIndex >= 3 && successRate >= 70:
		return model.Advanced
	case intervalIndex >= 2 && successRate >= 60:
		return model.Intermediate
	case intervalIndex >= 1:
		return model.Beginner
	default:
		return model.Learning
	}
}
