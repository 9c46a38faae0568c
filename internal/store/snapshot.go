package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rcliao/revisit/internal/model"
)

// record is the persisted shape of one item. Pointer fields let decoding
// tell a missing field from a zero value.
type record struct {
	TopicName      *string `json:"topic_name,omitempty"`
	Description    *string `json:"description"`
	LastReview     *string `json:"last_review"`
	NextReview     *string `json:"next_review"`
	IntervalIndex  *int    `json:"interval_index"`
	ReviewCount    *int    `json:"review_count"`
	SuccessStreak  *int    `json:"success_streak"`
	TotalSuccesses *int    `json:"total_successes"`
	TotalReviews   *int    `json:"total_reviews"`
	CreatedAt      *string `json:"created_at"`
}

// timestampLayouts are tried in order. The zone-less forms accept files
// written by older tools, interpreted in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func toRecord(it model.ReviewItem) record {
	name := it.TopicName
	desc := it.Description
	next := formatTimestamp(it.NextReview)
	created := formatTimestamp(it.CreatedAt)
	r := record{
		TopicName:      &name,
		Description:    &desc,
		NextReview:     &next,
		IntervalIndex:  &it.IntervalIndex,
		ReviewCount:    &it.ReviewCount,
		SuccessStreak:  &it.SuccessStreak,
		TotalSuccesses: &it.TotalSuccesses,
		TotalReviews:   &it.TotalReviews,
		CreatedAt:      &created,
	}
	if it.LastReview != nil {
		last := formatTimestamp(*it.LastReview)
		r.LastReview = &last
	}
	return r
}

func (r record) toItem(key string) (model.ReviewItem, error) {
	missing := func(field string) error {
		return fmt.Errorf("%w: topic %q: missing field %s", ErrCorruptState, key, field)
	}
	switch {
	case r.Description == nil:
		return model.ReviewItem{}, missing("description")
	case r.NextReview == nil:
		return model.ReviewItem{}, missing("next_review")
	case r.IntervalIndex == nil:
		return model.ReviewItem{}, missing("interval_index")
	case r.ReviewCount == nil:
		return model.ReviewItem{}, missing("review_count")
	case r.SuccessStreak == nil:
		return model.ReviewItem{}, missing("success_streak")
	case r.TotalSuccesses == nil:
		return model.ReviewItem{}, missing("total_successes")
	case r.TotalReviews == nil:
		return model.ReviewItem{}, missing("total_reviews")
	case r.CreatedAt == nil:
		return model.ReviewItem{}, missing("created_at")
	}
	if r.TopicName != nil && *r.TopicName != key {
		return model.ReviewItem{}, fmt.Errorf("%w: key %q holds topic_name %q", ErrCorruptState, key, *r.TopicName)
	}

	it := model.ReviewItem{
		TopicName:      key,
		Description:    *r.Description,
		IntervalIndex:  *r.IntervalIndex,
		ReviewCount:    *r.ReviewCount,
		SuccessStreak:  *r.SuccessStreak,
		TotalSuccesses: *r.TotalSuccesses,
		TotalReviews:   *r.TotalReviews,
	}
	var err error
	if it.NextReview, err = parseTimestamp(*r.NextReview); err != nil {
		return model.ReviewItem{}, fmt.Errorf("%w: topic %q: next_review: %v", ErrCorruptState, key, err)
	}
	if it.CreatedAt, err = parseTimestamp(*r.CreatedAt); err != nil {
		return model.ReviewItem{}, fmt.Errorf("%w: topic %q: created_at: %v", ErrCorruptState, key, err)
	}
	// Never-reviewed topics may carry null or "".
	if r.LastReview != nil && *r.LastReview != "" {
		t, err := parseTimestamp(*r.LastReview)
		if err != nil {
			return model.ReviewItem{}, fmt.Errorf("%w: topic %q: last_review: %v", ErrCorruptState, key, err)
		}
		it.LastReview = &t
	}
	if it.IntervalIndex < 0 || it.ReviewCount < 0 || it.SuccessStreak < 0 ||
		it.TotalSuccesses < 0 || it.TotalReviews < 0 {
		return model.ReviewItem{}, fmt.Errorf("%w: topic %q: negative counter", ErrCorruptState, key)
	}
	return it, nil
}

// EncodeSnapshot writes items as an indented JSON document keyed by topic
// name.
func EncodeSnapshot(w io.Writer, items map[string]model.ReviewItem) error {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	// Ordered manually so the output is stable across saves.
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, name := range names {
		if i > 0 {
			buf.WriteString(",")
		}
		k, _ := json.Marshal(name)
		v, err := json.MarshalIndent(toRecord(items[name]), "  ", "  ")
		if err != nil {
			return err
		}
		buf.WriteString("\n  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	if len(names) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// DecodeSnapshot parses a document written by EncodeSnapshot. Unknown fields,
// missing fields and malformed values fail with ErrCorruptState.
func DecodeSnapshot(r io.Reader) (map[string]model.ReviewItem, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc map[string]record
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	items := make(map[string]model.ReviewItem, len(doc))
	for key, rec := range doc {
		it, err := rec.toItem(key)
		if err != nil {
			return nil, err
		}
		items[key] = it
	}
	return items, nil
}
