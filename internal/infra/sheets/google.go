package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

// NewService authorises a Sheets client with a service account key.
func NewService(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*gsheets.Service, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.New("google credentials cannot be empty")
	}
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	opts = append([]option.ClientOption{option.WithTokenSource(cfg.TokenSource(ctx))}, opts...)
	return gsheets.NewService(ctx, opts...)
}

// Spreadsheet reads feeds from and appends QA pairs to one spreadsheet.
type Spreadsheet struct {
	service       *gsheets.Service
	spreadsheetID string
	logger        *slog.Logger
}

// NewSpreadsheet binds the service to a spreadsheet ID.
func NewSpreadsheet(service *gsheets.Service, spreadsheetID string, logger *slog.Logger) (*Spreadsheet, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("spreadsheet id cannot be empty")
	}
	return &Spreadsheet{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger.With("component", "sheets.spreadsheet"),
	}, nil
}

// Fetch implements feedsync.Source.
func (s *Spreadsheet) Fetch(ctx context.Context, feed feedsync.Feed) ([][]string, error) {
	t, err := tabFor(feed)
	if err != nil {
		return nil, err
	}
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, t.a1()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.a1(), err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	s.logger.Debug("feed fetched", "feed", feed, "rows", len(rows))
	return t.pad(rows), nil
}

// AppendQA implements support.Ledger.
func (s *Spreadsheet) AppendQA(ctx context.Context, question, answer string) error {
	values := &gsheets.ValueRange{Values: [][]interface{}{{question, answer}}}
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, ledgerRange, values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append qa ledger: %w", err)
	}
	return nil
}

var _ feedsync.Source = (*Spreadsheet)(nil)
