package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

// valueInputOption makes Sheets parse values as if typed in the UI, so the
// amount lands as a number and the timestamp as a date.
const valueInputOption = "USER_ENTERED"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	layout        ports.Layout
}

// Ensure interface conformance
var _ ports.Ledger = (*Client)(nil)

// Credentials is the service identity used to reach the spreadsheet. Either
// ClientEmail and PrivateKey, or a full service account JSON document.
type Credentials struct {
	ClientEmail string
	PrivateKey  string
	JSON        []byte
}

func (c Credentials) hasKeyPair() bool {
	return strings.TrimSpace(c.ClientEmail) != "" && strings.TrimSpace(c.PrivateKey) != ""
}

// New creates a Sheets-backed ledger for the given spreadsheet.
func New(ctx context.Context, spreadsheetID string, creds Credentials, layout ports.Layout) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, layout), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID string, layout ports.Layout) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, layout: layout}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	switch {
	case creds.hasKeyPair():
		slog.InfoContext(ctx, "Using service account key pair", "client_email", creds.ClientEmail)
		conf := &jwt.Config{
			Email:      strings.TrimSpace(creds.ClientEmail),
			PrivateKey: []byte(creds.PrivateKey),
			Scopes:     []string{gsheet.SpreadsheetsScope},
			TokenURL:   goauth.JWTTokenURL,
		}
		// Token fetches and API calls share the pooled transport.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
		service, err := gsheet.NewService(ctx, goption.WithHTTPClient(conf.Client(ctx)))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	case len(creds.JSON) > 0:
		slog.InfoContext(ctx, "Using service account JSON credentials", "credentials_size", len(creds.JSON))
		service, err := gsheet.NewService(ctx,
			goption.WithCredentialsJSON(creds.JSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY, GOOGLE_SERVICE_ACCOUNT_JSON, or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and transport-level timeouts. No overall request
// timeout is set: callers own cancellation through the context.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{Transport: transport}
}

// Append writes one row [timestamp, category, note, submitter, amount] into
// the expenses range of sheet. The amount is sent as a number.
func (c *Client) Append(ctx context.Context, sheet string, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := ports.Qualify(sheet, c.layout.ExpensesRange)
	vr := &gsheet.ValueRange{Values: [][]any{expenseRow(e)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", rng, err)
	}

	ref := rng
	if resp != nil && resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

func expenseRow(e core.Expense) []any {
	return []any{
		core.FormatTimestamp(e.Timestamp),
		string(e.Category),
		e.Note,
		e.Submitter,
		e.Amount,
	}
}

// ReadRanges fetches every range of sheet with one request each, all in
// flight at once. The first failure cancels the others.
func (c *Client) ReadRanges(ctx context.Context, sheet string, ranges []string) ([][][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	out := make([][][]any, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i := i
		rng := ports.Qualify(sheet, r)
		g.Go(func() error {
			resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(gctx).Do()
			if err != nil {
				return fmt.Errorf("read %s: %w", rng, err)
			}
			out[i] = toCells(resp.Values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func toCells(values [][]interface{}) [][]any {
	if values == nil {
		return [][]any{}
	}
	out := make([][]any, len(values))
	for i, row := range values {
		out[i] = append([]any(nil), row...)
	}
	return out
}
