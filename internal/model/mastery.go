package model

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// MasteryLevel is the categorical label derived from interval index and
// cumulative success rate.
type MasteryLevel int

const (
	Learning MasteryLevel = iota + 1
	Beginner
	Intermediate
	Advanced
	Mastered
)

var (
	masteryNames = [...]string{
		Learning:     "Learning",
		Beginner:     "Beginner",
		Intermediate: "Intermediate",
		Advanced:     "Advanced",
		Mastered:     "Mastered",
	}
	masteryByName = map[string]MasteryLevel{
		"Learning":     Learning,
		"Beginner":     Beginner,
		"Intermediate": Intermediate,
		"Advanced":     Advanced,
		"Mastered":     Mastered,
	}
)

var (
	_ fmt.Stringer             = MasteryLevel(0)
	_ json.Marshaler           = MasteryLevel(0)
	_ json.Unmarshaler         = (*MasteryLevel)(nil)
	_ encoding.TextMarshaler   = MasteryLevel(0)
	_ encoding.TextUnmarshaler = (*MasteryLevel)(nil)
)

func (m MasteryLevel) isValid() bool {
	return m >= Learning && m <= Mastered
}

// String returns the level name, or "MasteryLevel(n)" for invalid values.
func (m MasteryLevel) String() string {
	if m.isValid() {
		return masteryNames[m]
	}
	return fmt.Sprintf("MasteryLevel(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m MasteryLevel) MarshalText() ([]byte, error) {
	if !m.isValid() {
		return nil, fmt.Errorf("invalid mastery level: %d", int(m))
	}
	return []byte(masteryNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MasteryLevel) UnmarshalText(text []byte) error {
	v, ok := masteryByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid mastery level: %q", text)
	}
	*m = v
	return nil
}

// MarshalJSON serializes the level as a JSON string.
func (m MasteryLevel) MarshalJSON() ([]byte, error) {
	text, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON expects a JSON string.
func (m *MasteryLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid mastery level: %s", data)
	}
	return m.UnmarshalText([]byte(s))
}
