package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the persisted form of ChoreEvent.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultRecentLimit is how many trailing rows the summary shows.
const DefaultRecentLimit = 5

type (
	// ChoreEvent is one completed chore as stored in the sheet:
	// [date, task, amount, person].
	ChoreEvent struct {
		Timestamp time.Time
		Task      string
		Amount    int64
		Person    string
	}
)

var (
	ErrEmptyPerson    = errors.New("empty person name")
	ErrPersonTooLong  = errors.New("person name too long (max 100 characters)")
	ErrEmptyTask      = errors.New("empty task")
	ErrUnknownTask    = errors.New("unknown task")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrZeroTimestamp  = errors.New("timestamp cannot be zero")
	ErrDuplicateTask  = errors.New("duplicate task")
	ErrEmptyPriceList = errors.New("price table is empty")
)

// FormatTimestamp renders t the way rows are written to the store.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a stored timestamp in local time.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// Row returns the event in sheet column order.
func (e ChoreEvent) Row() []any {
	return []any{FormatTimestamp(e.Timestamp), e.Task, e.Amount, e.Person}
}

func (e ChoreEvent) Validate() error {
	if e.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if strings.TrimSpace(e.Task) == "" {
		return ErrEmptyTask
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	return ValidatePerson(e.Person)
}

// ValidatePerson checks the free-text name field.
func ValidatePerson(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyPerson
	}
	if len([]rune(name)) > 100 {
		return ErrPersonTooLong
	}
	return nil
}
