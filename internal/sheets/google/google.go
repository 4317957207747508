package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"paghetta/internal/core"
	applog "paghetta/internal/log"
	ports "paghetta/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is the first worksheet of a new spreadsheet.
const DefaultSheetName = "Sheet1"

// Client reads and appends chore rows on one worksheet.
type Client struct {
	connector     Connector
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.ChoreAppender = (*Client)(nil)
	_ ports.ChoreReader   = (*Client)(nil)
)

// Settings describe which sheet to open and with which key.
type Settings struct {
	// SpreadsheetURL or SpreadsheetID; the URL wins when both are set.
	SpreadsheetURL string
	SpreadsheetID  string
	SheetName      string
	Credentials    CredentialSource
}

// New wires a client to an existing connector.
func New(connector Connector, spreadsheetID, sheetName string) (*Client, error) {
	if connector == nil {
		return nil, errors.New("nil connector")
	}
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Client{
		connector:     connector,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// NewFromSettings resolves the spreadsheet and the credentials and returns
// a client that re-authenticates on every call.
func NewFromSettings(ctx context.Context, s Settings) (*Client, error) {
	id := strings.TrimSpace(s.SpreadsheetID)
	if strings.TrimSpace(s.SpreadsheetURL) != "" {
		var err error
		id, err = SpreadsheetIDFromURL(s.SpreadsheetURL)
		if err != nil {
			return nil, err
		}
	}
	if id == "" {
		return nil, errors.New("missing GOOGLE_SHEET_URL or GOOGLE_SPREADSHEET_ID")
	}

	creds, err := s.Credentials.Load(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := NewCredentialsConnector(ctx, creds)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Google Sheets client configured",
		applog.FieldComponent, applog.ComponentSheets,
		"spreadsheet_id", id,
		"sheet", s.SheetName,
		"scopes", strings.Join(Scopes, ","))

	return New(conn, id, s.SheetName)
}

// SheetName returns the worksheet the client writes to.
func (c *Client) SheetName() string { return c.sheetName }

// Append adds one row [date, task, amount, person] after the last row of
// the table. Values are written raw so the timestamp stays text.
func (c *Client) Append(ctx context.Context, e core.ChoreEvent) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	svc, err := c.connector.Connect(ctx)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}

	rng := a1Range(c.sheetName, "A:D")
	vr := &gsheet.ValueRange{Values: [][]any{e.Row()}}
	resp, err := svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", rng, err)
	}

	ref := rng
	if resp != nil && resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.DebugContext(ctx, "Row appended to sheet", applog.FieldComponent, applog.ComponentSheets, "range", ref, "task", e.Task, "person", e.Person)
	return ref, nil
}

// ListEvents reads the whole table. Row 1 must be a header naming the
// date, task, amount and person columns.
func (c *Client) ListEvents(ctx context.Context) ([]core.ChoreEvent, error) {
	svc, err := c.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	rng := a1Range(c.sheetName, "A:D")
	resp, err := svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	events, err := parseRecords(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rng, err)
	}
	slog.DebugContext(ctx, "Rows read from sheet", applog.FieldComponent, applog.ComponentSheets, "range", rng, "count", len(events))
	return events, nil
}

// a1Range quotes the sheet name so names with spaces or digits work.
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}
