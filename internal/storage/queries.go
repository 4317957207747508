package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type ChoreEventRow struct {
	ID         int64
	RecordedAt string
	Task       string
	Amount     int64
	Person     string
}

const createChoreEvent = `-- name: CreateChoreEvent :one
INSERT INTO chore_events (recorded_at, task, amount, person)
VALUES (?, ?, ?, ?)
RETURNING id, recorded_at, task, amount, person
`

type CreateChoreEventParams struct {
	RecordedAt string
	Task       string
	Amount     int64
	Person     string
}

func (q *Queries) CreateChoreEvent(ctx context.Context, arg CreateChoreEventParams) (ChoreEventRow, error) {
	row := q.db.QueryRowContext(ctx, createChoreEvent,
		arg.RecordedAt,
		arg.Task,
		arg.Amount,
		arg.Person,
	)
	var i ChoreEventRow
	err := row.Scan(
		&i.ID,
		&i.RecordedAt,
		&i.Task,
		&i.Amount,
		&i.Person,
	)
	return i, err
}

const listChoreEvents = `-- name: ListChoreEvents :many
SELECT id, recorded_at, task, amount, person
FROM chore_events
ORDER BY id
`

func (q *Queries) ListChoreEvents(ctx context.Context) ([]ChoreEventRow, error) {
	rows, err := q.db.QueryContext(ctx, listChoreEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ChoreEventRow
	for rows.Next() {
		var i ChoreEventRow
		if err := rows.Scan(
			&i.ID,
			&i.RecordedAt,
			&i.Task,
			&i.Amount,
			&i.Person,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countChoreEvents = `-- name: CountChoreEvents :one
SELECT COUNT(*) FROM chore_events
`

func (q *Queries) CountChoreEvents(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countChoreEvents)
	var count int64
	err := row.Scan(&count)
	return count, err
}
