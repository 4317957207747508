package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Scopes requested for the service account: spreadsheet feeds and drive.
var Scopes = []string{
	"https://spreadsheets.google.com/feeds",
	"https://www.googleapis.com/auth/drive",
}

var ErrMissingCredentials = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")

// Connector produces an authorized Sheets service. The client asks for a
// new one on every operation.
type Connector interface {
	Connect(ctx context.Context) (*gsheet.Service, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context) (*gsheet.Service, error)

func (f ConnectorFunc) Connect(ctx context.Context) (*gsheet.Service, error) { return f(ctx) }

type credentialsConnector struct {
	credentialsJSON []byte
	scopes          []string
	extra           []goption.ClientOption
}

// NewCredentialsConnector returns a Connector that authenticates with a
// service account key. The key is parsed once here so a bad bundle fails
// at startup rather than on the first request.
func NewCredentialsConnector(ctx context.Context, credentialsJSON []byte, extra ...goption.ClientOption) (Connector, error) {
	if len(credentialsJSON) == 0 {
		return nil, ErrMissingCredentials
	}
	if _, err := googleoauth.CredentialsFromJSON(ctx, credentialsJSON, Scopes...); err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	return &credentialsConnector{
		credentialsJSON: credentialsJSON,
		scopes:          Scopes,
		extra:           extra,
	}, nil
}

func (c *credentialsConnector) Connect(ctx context.Context) (*gsheet.Service, error) {
	creds, err := googleoauth.CredentialsFromJSON(ctx, c.credentialsJSON, c.scopes...)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	opts := append([]goption.ClientOption{goption.WithCredentials(creds)}, c.extra...)
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// NewOptionsConnector builds services from raw client options, e.g. a
// custom endpoint and HTTP client.
func NewOptionsConnector(opts ...goption.ClientOption) Connector {
	return ConnectorFunc(func(ctx context.Context) (*gsheet.Service, error) {
		svc, err := gsheet.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return svc, nil
	})
}

// CredentialSource says where the service account key comes from.
// Inline JSON wins over a file path.
type CredentialSource struct {
	JSON string
	File string
}

// Load returns the key bytes. A file is read fresh on each call.
func (s CredentialSource) Load(ctx context.Context) ([]byte, error) {
	inline := strings.TrimSpace(s.JSON)
	file := strings.TrimSpace(s.File)

	slog.DebugContext(ctx, "Resolving service account credentials",
		"has_json", inline != "",
		"file_path", file)

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, ErrMissingCredentials
	}
}

var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetIDFromURL extracts the spreadsheet ID from a sheet URL such as
// https://docs.google.com/spreadsheets/d/<id>/edit#gid=0. A bare ID is
// returned unchanged.
func SpreadsheetIDFromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty spreadsheet URL")
	}
	if m := spreadsheetURLPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	if strings.ContainsAny(raw, "/:?#") {
		return "", fmt.Errorf("no spreadsheet ID in URL %q", raw)
	}
	return raw, nil
}
