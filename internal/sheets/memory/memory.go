package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"paghetta/internal/core"
	ports "paghetta/internal/sheets"
)

var _ ports.ChoreStore = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	items []core.ChoreEvent
}

func New(seed ...core.ChoreEvent) *Store {
	return &Store{items: append([]core.ChoreEvent(nil), seed...)}
}

// NewFromFile seeds the store from a CSV file with a header row
// (date,task,amount,person). A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	events, err := readSeed(f)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return New(events...), nil
}

// Append stores the event and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.ChoreEvent) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListEvents returns a copy of every event in insertion order.
func (s *Store) ListEvents(_ context.Context) ([]core.ChoreEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ChoreEvent(nil), s.items...), nil
}

func readSeed(r io.Reader) ([]core.ChoreEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.Comment = '#'
	var out []core.ChoreEvent
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}
		ts, err := core.ParseTimestamp(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amt, err := core.ParseAmount(rec[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e := core.ChoreEvent{
			Timestamp: ts,
			Task:      strings.TrimSpace(rec[1]),
			Amount:    amt,
			Person:    strings.TrimSpace(rec[3]),
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e)
	}
	return out, nil
}
