package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rcliao/revisit/internal/model"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteStore implements Store and EventRecorder using SQLite.
type SQLiteStore struct {
	db   *sqlx.DB
	path string
	lock *fileLock
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db dir: %v", ErrIO, err)
	}

	lock, err := acquireLock(dbPath + ".lock")
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		lock.release()
		return nil, fmt.Errorf("%w: open db: %v", ErrIO, err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: dbPath, lock: lock}

	if err := s.migrate(); err != nil {
		db.Close()
		lock.release()
		if strings.Contains(err.Error(), "not a database") {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, dbPath, err)
		}
		return nil, fmt.Errorf("%w: migrate: %v", ErrIO, err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS topics (
		topic_name      TEXT PRIMARY KEY,
		description     TEXT NOT NULL DEFAULT '',
		last_review     TEXT,
		next_review     TEXT NOT NULL,
		interval_index  INTEGER NOT NULL DEFAULT 0,
		review_count    INTEGER NOT NULL DEFAULT 0,
		success_streak  INTEGER NOT NULL DEFAULT 0,
		total_successes INTEGER NOT NULL DEFAULT 0,
		total_reviews   INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id              TEXT PRIMARY KEY,
		topic           TEXT NOT NULL,
		success         INTEGER NOT NULL,
		interval_before INTEGER NOT NULL,
		interval_after  INTEGER NOT NULL,
		reviewed_at     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_topic ON reviews(topic, reviewed_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

type topicRow struct {
	TopicName      string         `db:"topic_name"`
	Description    string         `db:"description"`
	LastReview     sql.NullString `db:"last_review"`
	NextReview     string         `db:"next_review"`
	IntervalIndex  int            `db:"interval_index"`
	ReviewCount    int            `db:"review_count"`
	SuccessStreak  int            `db:"success_streak"`
	TotalSuccesses int            `db:"total_successes"`
	TotalReviews   int            `db:"total_reviews"`
	CreatedAt      string         `db:"created_at"`
}

func newTopicRow(it model.ReviewItem) topicRow {
	r := topicRow{
		TopicName:      it.TopicName,
		Description:    it.Description,
		NextReview:     formatTimestamp(it.NextReview),
		IntervalIndex:  it.IntervalIndex,
		ReviewCount:    it.ReviewCount,
		SuccessStreak:  it.SuccessStreak,
		TotalSuccesses: it.TotalSuccesses,
		TotalReviews:   it.TotalReviews,
		CreatedAt:      formatTimestamp(it.CreatedAt),
	}
	if it.LastReview != nil {
		r.LastReview = sql.NullString{String: formatTimestamp(*it.LastReview), Valid: true}
	}
	return r
}

func (r topicRow) toItem() (model.ReviewItem, error) {
	last := &r.LastReview.String
	if !r.LastReview.Valid {
		last = nil
	}
	desc := r.Description
	return record{
		Description:    &desc,
		LastReview:     last,
		NextReview:     &r.NextReview,
		IntervalIndex:  &r.IntervalIndex,
		ReviewCount:    &r.ReviewCount,
		SuccessStreak:  &r.SuccessStreak,
		TotalSuccesses: &r.TotalSuccesses,
		TotalReviews:   &r.TotalReviews,
		CreatedAt:      &r.CreatedAt,
	}.toItem(r.TopicName)
}

func (s *SQLiteStore) Load(ctx context.Context) (map[string]model.ReviewItem, error) {
	var rows []topicRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT topic_name, description, last_review, next_review, interval_index,
		        review_count, success_streak, total_successes, total_reviews, created_at
		 FROM topics`)
	if err != nil {
		return nil, fmt.Errorf("%w: load topics: %v", ErrIO, err)
	}

	items := make(map[string]model.ReviewItem, len(rows))
	for _, r := range rows {
		it, err := r.toItem()
		if err != nil {
			return nil, err
		}
		items[it.TopicName] = it
	}
	return items, nil
}

// Save replaces the topics table inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, items map[string]model.ReviewItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topics`); err != nil {
		return fmt.Errorf("%w: clear topics: %v", ErrIO, err)
	}
	for _, it := range items {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO topics (topic_name, description, last_review, next_review, interval_index,
			                     review_count, success_streak, total_successes, total_reviews, created_at)
			 VALUES (:topic_name, :description, :last_review, :next_review, :interval_index,
			         :review_count, :success_streak, :total_successes, :total_reviews, :created_at)`,
			newTopicRow(it))
		if err != nil {
			return fmt.Errorf("%w: insert topic %q: %v", ErrIO, it.TopicName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrIO, err)
	}
	return nil
}

// reviewedAtLayout has a fixed-width fraction so that text order in SQLite
// matches time order.
const reviewedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type reviewRow struct {
	ID             string `db:"id"`
	Topic          string `db:"topic"`
	Success        bool   `db:"success"`
	IntervalBefore int    `db:"interval_before"`
	IntervalAfter  int    `db:"interval_after"`
	ReviewedAt     string `db:"reviewed_at"`
}

func (s *SQLiteStore) RecordEvent(ctx context.Context, ev model.ReviewEvent) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO reviews (id, topic, success, interval_before, interval_after, reviewed_at)
		 VALUES (:id, :topic, :success, :interval_before, :interval_after, :reviewed_at)`,
		reviewRow{
			ID:             ev.ID,
			Topic:          ev.Topic,
			Success:        ev.Success,
			IntervalBefore: ev.IntervalBefore,
			IntervalAfter:  ev.IntervalAfter,
			ReviewedAt:     ev.ReviewedAt.UTC().Format(reviewedAtLayout),
		})
	if err != nil {
		return fmt.Errorf("%w: insert review: %v", ErrIO, err)
	}
	return nil
}

func (s *SQLiteStore) Events(ctx context.Context, topic string, limit int) ([]model.ReviewEvent, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	if topic != "" {
		where = append(where, "topic = ?")
		args = append(args, topic)
	}
	query := `SELECT id, topic, success, interval_before, interval_after, reviewed_at
	          FROM reviews WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list reviews: %v", ErrIO, err)
	}

	events := make([]model.ReviewEvent, 0, len(rows))
	for _, r := range rows {
		t, err := parseTimestamp(r.ReviewedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: review %s: %v", ErrCorruptState, r.ID, err)
		}
		events = append(events, model.ReviewEvent{
			ID:             r.ID,
			Topic:          r.Topic,
			Success:        r.Success,
			IntervalBefore: r.IntervalBefore,
			IntervalAfter:  r.IntervalAfter,
			ReviewedAt:     t,
		})
	}
	return events, nil
}

func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if lerr := s.lock.release(); err == nil {
		err = lerr
	}
	return err
}
