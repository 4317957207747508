package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"paghetta/internal/core"
	applog "paghetta/internal/log"
	ports "paghetta/internal/sheets"

	_ "modernc.org/sqlite"
)

var _ ports.ChoreStore = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready",
		applog.FieldComponent, applog.ComponentStorage,
		"db_path", dbPath,
		"schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements sheets.ChoreAppender. The row ref is the new row id.
func (r *SQLiteRepository) Append(ctx context.Context, e core.ChoreEvent) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	row, err := r.queries.CreateChoreEvent(ctx, CreateChoreEventParams{
		RecordedAt: core.FormatTimestamp(e.Timestamp),
		Task:       e.Task,
		Amount:     e.Amount,
		Person:     e.Person,
	})
	if err != nil {
		return "", fmt.Errorf("create chore event: %w", err)
	}

	slog.InfoContext(ctx, "Chore event saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		"id", row.ID,
		"task", row.Task,
		"amount", row.Amount,
		"person", row.Person)

	return strconv.FormatInt(row.ID, 10), nil
}

// ListEvents implements sheets.ChoreReader, in insertion order.
func (r *SQLiteRepository) ListEvents(ctx context.Context) ([]core.ChoreEvent, error) {
	rows, err := r.queries.ListChoreEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chore events: %w", err)
	}

	events := make([]core.ChoreEvent, 0, len(rows))
	for _, row := range rows {
		ts, err := core.ParseTimestamp(row.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("chore event %d: %w", row.ID, err)
		}
		events = append(events, core.ChoreEvent{
			Timestamp: ts,
			Task:      row.Task,
			Amount:    row.Amount,
			Person:    row.Person,
		})
	}
	return events, nil
}

// Count returns the number of stored events.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	return r.queries.CountChoreEvents(ctx)
}
