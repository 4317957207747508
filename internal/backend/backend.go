// Package backend picks and opens the chore store named by DATA_BACKEND.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"paghetta/internal/config"
	"paghetta/internal/sheets"
	gsheet "paghetta/internal/sheets/google"
)

// Kind names a store implementation.
type Kind string

const (
	SQLite Kind = "sqlite"
	Sheets Kind = "sheets"
	Memory Kind = "memory"
)

// Kinds lists the supported stores in the order they are documented.
func Kinds() []Kind {
	return []Kind{SQLite, Sheets, Memory}
}

func (k Kind) String() string { return string(k) }

// IsValid reports whether k names a supported store.
func (k Kind) IsValid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Config selects a store and carries the settings only that store reads.
type Config struct {
	Kind Kind

	SQLitePath string
	Sheets     gsheet.Settings
	// SeedFile optionally preloads the memory store from CSV.
	SeedFile string
}

// FromAppConfig picks the store settings out of the application config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Kind:       Kind(config.NormalizeBackend(app.DataBackend)),
		SQLitePath: app.SQLiteDBPath,
		Sheets: gsheet.Settings{
			SpreadsheetURL: app.GoogleSheetURL,
			SpreadsheetID:  app.GoogleSpreadsheetID,
			SheetName:      app.GoogleSheetName,
			Credentials: gsheet.CredentialSource{
				JSON: app.GoogleServiceAccountJSON,
				File: app.GoogleServiceAccountFile,
			},
		},
		SeedFile: app.MemorySeedFile,
	}
	return cfg, cfg.Validate()
}

// Validate checks that the selected store has what it needs to open.
func (c Config) Validate() error {
	if !c.Kind.IsValid() {
		names := make([]string, 0, len(Kinds()))
		for _, k := range Kinds() {
			names = append(names, k.String())
		}
		return fmt.Errorf("unknown data backend %q (want one of %s)", c.Kind, strings.Join(names, ", "))
	}

	switch c.Kind {
	case SQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite store needs SQLITE_DB_PATH")
		}
	case Sheets:
		if c.Sheets.SpreadsheetURL == "" && c.Sheets.SpreadsheetID == "" {
			return errors.New("sheets store needs GOOGLE_SHEET_URL or GOOGLE_SPREADSHEET_ID")
		}
		if c.Sheets.Credentials.JSON == "" && c.Sheets.Credentials.File == "" {
			return errors.New("sheets store needs GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE")
		}
	}
	return nil
}

// Opened is a ready store plus whatever must be released on shutdown.
type Opened struct {
	Store   sheets.ChoreStore
	release func() error
}

// Close releases the store's resources. Stores that hold none are no-ops.
func (o *Opened) Close() error {
	if o == nil || o.release == nil {
		return nil
	}
	return o.release()
}
