package gsheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Store appends lead rows to one worksheet of a Google spreadsheet
type Store struct {
	service       *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewStore creates a Sheets client. Production callers pass
// option.WithCredentialsFile with a service account key.
func NewStore(ctx context.Context, spreadsheetID, worksheet string, opts ...option.ClientOption) (*Store, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Store{
		service:       service,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}, nil
}

// Initialize checks that the spreadsheet and worksheet are reachable
func (s *Store) Initialize(ctx context.Context) error {
	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet %s: %w", s.spreadsheetID, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.worksheet {
			return nil
		}
	}
	return fmt.Errorf("worksheet %q not found in spreadsheet %s", s.worksheet, s.spreadsheetID)
}

// AppendRow adds one row after the last non-empty row of the worksheet
func (s *Store) AppendRow(ctx context.Context, columns []string) error {
	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = c
	}

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.worksheet+"!A1", &sheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", s.worksheet, err)
	}
	return nil
}

// Close is a no-op, the HTTP client needs no teardown
func (s *Store) Close() error {
	return nil
}
