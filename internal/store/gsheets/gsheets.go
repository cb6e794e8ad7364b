// Package gsheets reads accounts and transactions from a Google spreadsheet
// with an Accounts tab and a Transactions tab. Columns are located by header
// name, so their order in the sheet does not matter.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/store"
)

const (
	DefaultAccountsSheet     = "Accounts"
	DefaultTransactionsSheet = "Transactions"
)

// Config selects the spreadsheet and the credentials to read it with.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
	AccountsSheet      string
	TransactionsSheet  string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	accountsSheet     string
	transactionsSheet string
	logger            *log.Logger
}

var (
	_ store.AccountReader     = (*Client)(nil)
	_ store.TransactionReader = (*Client)(nil)
)

// New creates a read-only Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg), nil
}

func newClient(svc *gsheet.Service, cfg Config) *Client {
	c := &Client{
		svc:               svc,
		spreadsheetID:     strings.TrimSpace(cfg.SpreadsheetID),
		accountsSheet:     strings.TrimSpace(cfg.AccountsSheet),
		transactionsSheet: strings.TrimSpace(cfg.TransactionsSheet),
		logger:            log.Default(log.ComponentSheets),
	}
	if c.accountsSheet == "" {
		c.accountsSheet = DefaultAccountsSheet
	}
	if c.transactionsSheet == "" {
		c.transactionsSheet = DefaultTransactionsSheet
	}
	return c
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses the inline JSON, then the file, then GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) readSheet(ctx context.Context, sheet string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:H", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) FindAccount(ctx context.Context, user string) (core.Account, error) {
	values, err := c.readSheet(ctx, c.accountsSheet)
	if err != nil {
		return core.Account{}, err
	}
	accounts, err := parseAccounts(values)
	if err != nil {
		return core.Account{}, fmt.Errorf("%s: %w", c.accountsSheet, err)
	}
	for _, a := range accounts {
		if a.User == user {
			return a, nil
		}
	}
	return core.Account{}, core.ErrAccountNotFound
}

// ListTransactions reads the whole tab and filters locally; the Values API
// has no server-side filtering.
func (c *Client) ListTransactions(ctx context.Context, q store.Query) ([]core.Record, error) {
	values, err := c.readSheet(ctx, c.transactionsSheet)
	if err != nil {
		return nil, err
	}
	recs, skipped, err := parseRecords(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.transactionsSheet, err)
	}
	if skipped > 0 {
		c.logger.WarnContext(ctx, "Skipped unreadable transaction rows",
			"sheet", c.transactionsSheet, log.FieldCount, skipped, "error_type", log.ErrorTypeDataQuality)
	}
	out := recs[:0]
	for _, r := range recs {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}
