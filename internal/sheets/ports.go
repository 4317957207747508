package sheets

import (
	"context"
	"paghetta/internal/core"
)

// Ports for outbound adapters.
type (
	// ChoreAppender appends one row to the store. No row is ever overwritten.
	ChoreAppender interface {
		Append(ctx context.Context, e core.ChoreEvent) (rowRef string, err error)
	}

	// ChoreReader returns every stored row in insertion order.
	ChoreReader interface {
		ListEvents(ctx context.Context) ([]core.ChoreEvent, error)
	}

	// ChoreStore is the full store surface used by the service.
	ChoreStore interface {
		ChoreAppender
		ChoreReader
	}
)
