package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "paghetta/internal/sheets/google"
	"paghetta/internal/sheets/memory"
	"paghetta/internal/storage"
)

// Opener opens the configured store and logs which one it picked.
type Opener struct {
	logger *slog.Logger
}

// NewOpener returns an Opener logging to logger, or to slog's default.
func NewOpener(logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{logger: logger}
}

// Open validates cfg and opens the store it selects.
func (o *Opener) Open(ctx context.Context, cfg Config) (*Opened, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		o.logger.Info("Chore store opened", "backend", cfg.Kind, "db_path", cfg.SQLitePath)
		return &Opened{Store: repo, release: repo.Close}, nil

	case Sheets:
		client, err := gsheet.NewFromSettings(ctx, cfg.Sheets)
		if err != nil {
			return nil, fmt.Errorf("open sheets store: %w", err)
		}
		o.logger.Info("Chore store opened", "backend", cfg.Kind, "sheet", client.SheetName())
		return &Opened{Store: client}, nil

	default:
		store := memory.New()
		if cfg.SeedFile != "" {
			var err error
			if store, err = memory.NewFromFile(cfg.SeedFile); err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
		}
		o.logger.Info("Chore store opened", "backend", cfg.Kind, "seed_file", cfg.SeedFile)
		return &Opened{Store: store}, nil
	}
}
