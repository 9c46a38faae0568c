package store

import (
	"context"
	"fmt"
	"os"
)

// Info holds database statistics.
type Info struct {
	DBPath       string `json:"db_path"`
	DBSizeBytes  int64  `json:"db_size_bytes"`
	Topics       int    `json:"topics"`
	ReviewEvents int    `json:"review_events"`
	FirstReview  string `json:"first_review,omitempty"`
	LastReview   string `json:"last_review,omitempty"`
}

// Info returns database statistics.
func (s *SQLiteStore) Info(ctx context.Context) (*Info, error) {
	info := &Info{DBPath: s.path}

	if st, err := os.Stat(s.path); err == nil {
		info.DBSizeBytes = st.Size()
	}

	if err := s.db.GetContext(ctx, &info.Topics, `SELECT COUNT(*) FROM topics`); err != nil {
		return nil, fmt.Errorf("%w: count topics: %v", ErrIO, err)
	}
	if err := s.db.GetContext(ctx, &info.ReviewEvents, `SELECT COUNT(*) FROM reviews`); err != nil {
		return nil, fmt.Errorf("%w: count reviews: %v", ErrIO, err)
	}
	if info.ReviewEvents > 0 {
		var bounds struct {
			First string `db:"first"`
			Last  string `db:"last"`
		}
		if err := s.db.GetContext(ctx, &bounds,
			`SELECT MIN(reviewed_at) AS first, MAX(reviewed_at) AS last FROM reviews`); err != nil {
			return nil, fmt.Errorf("%w: review bounds: %v", ErrIO, err)
		}
		info.FirstReview = bounds.First
		info.LastReview = bounds.Last
	}
	return info, nil
}
