package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"paghetta/internal/core"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := New()
	events, err := s.ListEvents(context.Background())
	if err != nil || len(events) != 0 {
		t.Fatalf("unexpected initial list: %v err=%v", events, err)
	}

	e := core.ChoreEvent{
		Timestamp: time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local),
		Task:      "Dishes",
		Amount:    50,
		Person:    "Alice",
	}
	ref, err := s.Append(context.Background(), e)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, err = s.Append(context.Background(), e)
	if err != nil || ref != "mem:2" {
		t.Fatalf("identical append should add a second row: ref=%q err=%v", ref, err)
	}

	events, _ = s.ListEvents(context.Background())
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	events[0].Person = "changed"
	again, _ := s.ListEvents(context.Background())
	if again[0].Person != "Alice" {
		t.Fatalf("ListEvents must return a copy")
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	if _, err := s.Append(context.Background(), core.ChoreEvent{Task: "Dishes", Amount: 50, Person: "A"}); err == nil {
		t.Fatalf("expected validation error for zero timestamp")
	}
}

func TestNewFromFileSeeds(t *testing.T) {
	dir := t.TempDir()

	// Missing file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "missing.csv"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if events, _ := s.ListEvents(context.Background()); len(events) != 0 {
		t.Fatalf("expected empty store")
	}

	path := filepath.Join(dir, "seed_events.csv")
	content := "date,task,amount,person\n# comment\n2025-01-01 10:00:00,Dishes,50,Alice\n2025-01-02 11:00:00,Folding laundry,80,Bob\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	events, _ := s.ListEvents(context.Background())
	if len(events) != 2 || events[1].Person != "Bob" || events[1].Amount != 80 {
		t.Fatalf("unexpected seeded events: %+v", events)
	}

	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("2025-01-01 10:00:00,Dishes,abc,Alice\n"), 0o644); err != nil {
		t.Fatalf("write bad: %v", err)
	}
	if _, err := NewFromFile(bad); err == nil {
		t.Fatalf("expected error for malformed amount")
	}
}
