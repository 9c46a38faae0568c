package leitner

import "time"

// Ladder is an ascending sequence of review intervals in days. Index i is
// Leitner box i.
type Ladder []int

// DefaultLadder is the interval ladder used unless WithLadder overrides it.
var DefaultLadder = Ladder{1, 3, 5, 11, 25, 44, 88}

// Len returns the number of boxes.
func (l Ladder) Len() int { return len(l) }

// Last returns the highest valid interval index.
func (l Ladder) Last() int { return len(l) - 1 }

// Clamp bounds i to [0, Last()].
func (l Ladder) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > l.Last() {
		return l.Last()
	}
	return i
}

// Days returns the interval of box i in days. i is clamped first.
func (l Ladder) Days(i int) int {
	return l[l.Clamp(i)]
}

// Interval returns the interval of box i as a duration.
func (l Ladder) Interval(i int) time.Duration {
	return time.Duration(l.Days(i)) * 24 * time.Hour
}

func (l Ladder) validate() error {
	if len(l) == 0 {
		return ErrInvalidLadder
	}
	prev := 0
	for _, d := range l {
		if d <= prev {
			return ErrInvalidLadder
		}
		prev = d
	}
	return nil
}
