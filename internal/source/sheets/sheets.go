// Package sheets reads the expense table from a Google Sheets worksheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"homespend/internal/core"
	"homespend/internal/source"
)

type Client struct {
	spreadsheetID string
	sheetName     string
	fetchValues   valuesFetcher
}

// valuesFetcher reads a range of cell values; swapped in tests.
type valuesFetcher func(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)

var _ source.TableFetcher = (*Client)(nil)

// New creates a Sheets client using Service Account credentials from the
// environment. Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Gastos"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		fetchValues: func(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
			resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
			if err != nil {
				return nil, err
			}
			return resp.Values, nil
		},
	}, nil
}

// newSheetsService initializes a Sheets service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Name implements source.Name.
func (c *Client) Name() string {
	return "sheets"
}

// FetchTable reads the whole worksheet and returns it as a raw table. The
// first row is treated as the header row.
func (c *Client) FetchTable(ctx context.Context) (core.RawTable, error) {
	values, err := c.fetchValues(ctx, c.spreadsheetID, c.sheetName)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}
	if len(values) == 0 {
		slog.WarnContext(ctx, "sheet is empty", "sheet", c.sheetName)
		return core.RawTable{}, nil
	}
	return source.TableFromValues(values), nil
}
