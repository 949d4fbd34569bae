// Package sheets reads dashboards straight from a Google spreadsheet with
// three tabs: Accounts, Transactions and BalanceSheet. Every row starts with
// the account holder's email.
package sheets

import (
    "context"
    "errors"
    "fmt"
    "os"
    "strings"
    "time"

    goption "google.golang.org/api/option"
    gsheet "google.golang.org/api/sheets/v4"

    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
)

// Default ranges; the first row of each tab is a header.
const (
    AccountsRange     = "Accounts!A2:C"
    TransactionsRange = "Transactions!A2:E"
    BalanceSheetRange = "BalanceSheet!A2:E"
)

// valuesReader is the slice of the Sheets API the client needs. Rows come
// back in the order of ranges.
type valuesReader interface {
    BatchGet(ctx context.Context, ranges ...string) ([][][]interface{}, error)
}

type apiReader struct {
    svc           *gsheet.Service
    spreadsheetID string
}

func (a apiReader) BatchGet(ctx context.Context, ranges ...string) ([][][]interface{}, error) {
    resp, err := a.svc.Spreadsheets.Values.BatchGet(a.spreadsheetID).
        Ranges(ranges...).
        ValueRenderOption("UNFORMATTED_VALUE").
        DateTimeRenderOption("FORMATTED_STRING").
        Context(ctx).Do()
    if err != nil {
        return nil, err
    }
    if len(resp.ValueRanges) != len(ranges) {
        return nil, fmt.Errorf("expected %d ranges, got %d", len(ranges), len(resp.ValueRanges))
    }
    out := make([][][]interface{}, len(resp.ValueRanges))
    for i, vr := range resp.ValueRanges {
        out[i] = vr.Values
    }
    return out, nil
}

// Client implements dashboard.Source over a spreadsheet.
type Client struct {
    values valuesReader
    now    func() time.Time
}

// Credentials returns service account JSON from inline JSON or a file path.
func Credentials(inline, file string) ([]byte, error) {
    switch {
    case strings.TrimSpace(inline) != "":
        return []byte(inline), nil
    case strings.TrimSpace(file) != "":
        b, err := os.ReadFile(file)
        if err != nil {
            return nil, fmt.Errorf("read service account file: %w", err)
        }
        return b, nil
    default:
        return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
    }
}

// New creates a read-only Sheets client for spreadsheetID.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
    if strings.TrimSpace(spreadsheetID) == "" {
        return nil, errors.New("missing spreadsheet id")
    }
    svc, err := gsheet.NewService(ctx,
        goption.WithCredentialsJSON(credentialsJSON),
        goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
    if err != nil {
        return nil, fmt.Errorf("create sheets service: %w", err)
    }
    return newWithReader(apiReader{svc: svc, spreadsheetID: spreadsheetID}), nil
}

func newWithReader(r valuesReader) *Client { return &Client{values: r, now: time.Now} }

// FetchDashboard implements dashboard.Source. All three tabs are read in a
// single batch request.
func (c *Client) FetchDashboard(ctx context.Context, email string) (escrow.Dashboard, error) {
    email = escrow.NormalizeEmail(email)
    rows, err := c.get(ctx, AccountsRange, TransactionsRange, BalanceSheetRange)
    if err != nil {
        return escrow.Dashboard{}, err
    }
    d, ok := parseAccount(rows[0], email)
    if !ok {
        return escrow.Dashboard{}, errs.ErrNotFound
    }
    if d.Transactions, err = parseTransactions(rows[1], email); err != nil {
        return escrow.Dashboard{}, err
    }
    if d.BalanceSheet, err = parseBalanceSheet(rows[2], email); err != nil {
        return escrow.Dashboard{}, err
    }
    if err := d.BalanceSheet.Validate(); err != nil {
        return escrow.Dashboard{}, fmt.Errorf("balance sheet: %v: %w", err, errs.ErrUpstreamPayload)
    }
    d.FetchedAt = c.now().UTC()
    return d, nil
}

func (c *Client) get(ctx context.Context, ranges ...string) ([][][]interface{}, error) {
    rows, err := c.values.BatchGet(ctx, ranges...)
    if err != nil {
        if ctxErr := ctx.Err(); ctxErr != nil {
            return nil, ctxErr
        }
        return nil, fmt.Errorf("read %s: %v: %w", strings.Join(ranges, ","), err, errs.ErrUpstream)
    }
    return rows, nil
}

// Ready checks that the Accounts tab can be read.
func (c *Client) Ready(ctx context.Context) error {
    _, err := c.get(ctx, "Accounts!A1:A1")
    return err
}
