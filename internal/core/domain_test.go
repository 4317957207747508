package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestChoreEventValidate(t *testing.T) {
	now := time.Date(2025, 3, 1, 18, 30, 0, 0, time.Local)
	good := ChoreEvent{Timestamp: now, Task: "Dishes", Amount: 50, Person: "Alice"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    ChoreEvent
		want error
	}{
		{"zero timestamp", ChoreEvent{Task: "Dishes", Amount: 50, Person: "A"}, ErrZeroTimestamp},
		{"empty task", ChoreEvent{Timestamp: now, Task: " ", Amount: 50, Person: "A"}, ErrEmptyTask},
		{"zero amount", ChoreEvent{Timestamp: now, Task: "Dishes", Amount: 0, Person: "A"}, ErrInvalidAmount},
		{"empty person", ChoreEvent{Timestamp: now, Task: "Dishes", Amount: 50, Person: "  "}, ErrEmptyPerson},
		{"long person", ChoreEvent{Timestamp: now, Task: "Dishes", Amount: 50, Person: strings.Repeat("x", 101)}, ErrPersonTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.e.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 12, 31, 23, 59, 58, 0, time.Local)
	s := FormatTimestamp(ts)
	if s != "2025-12-31 23:59:58" {
		t.Fatalf("unexpected format: %s", s)
	}
	back, err := ParseTimestamp(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !back.Equal(ts) {
		t.Fatalf("round trip mismatch: %v != %v", back, ts)
	}
	if _, err := ParseTimestamp("31/12/2025"); err == nil {
		t.Fatalf("expected error for foreign layout")
	}
}

func TestChoreEventRowOrder(t *testing.T) {
	e := ChoreEvent{Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local), Task: "Dishes", Amount: 50, Person: "Bob"}
	row := e.Row()
	if len(row) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(row))
	}
	if row[0] != "2025-01-02 03:04:05" || row[1] != "Dishes" || row[2] != int64(50) || row[3] != "Bob" {
		t.Fatalf("unexpected row: %#v", row)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	ve := &ValidationError{Field: "person", Err: ErrEmptyPerson}
	if !IsValidation(ve) || IsStore(ve) {
		t.Fatalf("validation error misclassified")
	}
	if !errors.Is(ve, ErrEmptyPerson) {
		t.Fatalf("validation error should unwrap to sentinel")
	}

	cause := errors.New("dial tcp: timeout")
	var err error = &StoreError{Op: "append", Err: cause}
	if !IsStore(err) || IsValidation(err) {
		t.Fatalf("store error misclassified")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("store error should unwrap to cause")
	}
	if err.Error() != "store append: dial tcp: timeout" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
