// Package appscript fetches dashboards from the spreadsheet web app endpoint
// (GET ?action=getDashboardData&email=...).
package appscript

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/go-playground/validator/v10"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
)

const (
    action         = "getDashboardData"
    maxBody        = 4 << 20
    defaultFailure = "failed to fetch dashboard data: the response was not successful"
)

// Client calls the web app. It is safe for concurrent use.
type Client struct {
    endpoint *url.URL
    hc       *http.Client
    validate *validator.Validate
    now      func() time.Time
}

// New returns a client for rawURL. hc may be nil, in which case a pooled
// client with the given timeout is used.
func New(rawURL string, hc *http.Client, timeout time.Duration) (*Client, error) {
    u, err := url.Parse(strings.TrimSpace(rawURL))
    if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
        return nil, fmt.Errorf("invalid upstream url %q", rawURL)
    }
    if hc == nil {
        hc = NewHTTPClient(timeout)
    }
    return &Client{endpoint: u, hc: hc, validate: validator.New(), now: time.Now}, nil
}

// NewHTTPClient creates an HTTP client with connection pooling and sane timeouts.
func NewHTTPClient(timeout time.Duration) *http.Client {
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    dialer := &net.Dialer{
        Timeout:   10 * time.Second,
        KeepAlive: 30 * time.Second,
    }
    transport := &http.Transport{
        DialContext:           dialer.DialContext,
        MaxIdleConns:          50,
        MaxIdleConnsPerHost:   10,
        IdleConnTimeout:       90 * time.Second,
        TLSHandshakeTimeout:   10 * time.Second,
        ResponseHeaderTimeout: timeout,
        ExpectContinueTimeout: 1 * time.Second,
        ForceAttemptHTTP2:     true,
    }
    return &http.Client{Transport: transport, Timeout: timeout}
}

type response struct {
    Success bool     `json:"success"`
    Data    *payload `json:"data"`
    Error   string   `json:"error"`
}

type payload struct {
    AccountID    flexString             `json:"accountId"`
    CompanyName  string                 `json:"companyName"`
    Transactions []transaction          `json:"transactions" validate:"dive"`
    BalanceSheet balancesheet.Statement `json:"balanceSheet"`
}

type transaction struct {
    ID          flexString `json:"id"`
    Date        string     `json:"date" validate:"required"`
    Description string     `json:"description"`
    Amount      flexNumber `json:"amount"`
}

// FetchDashboard implements dashboard.Source.
func (c *Client) FetchDashboard(ctx context.Context, email string) (escrow.Dashboard, error) {
    u := *c.endpoint
    q := u.Query()
    q.Set("action", action)
    q.Set("email", email)
    u.RawQuery = q.Encode()

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
    if err != nil {
        return escrow.Dashboard{}, err
    }
    req.Header.Set("Accept", "application/json")
    resp, err := c.hc.Do(req)
    if err != nil {
        if ctxErr := ctx.Err(); ctxErr != nil {
            return escrow.Dashboard{}, ctxErr
        }
        return escrow.Dashboard{}, fmt.Errorf("request dashboard: %v: %w", err, errs.ErrUpstream)
    }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        _, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
        return escrow.Dashboard{}, fmt.Errorf("network response was not ok. status: %d: %w", resp.StatusCode, errs.ErrUpstream)
    }

    var out response
    if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
        return escrow.Dashboard{}, fmt.Errorf("decode dashboard: %v: %w", err, errs.ErrUpstreamPayload)
    }
    if !out.Success || out.Data == nil {
        msg := strings.TrimSpace(out.Error)
        if msg == "" {
            msg = defaultFailure
        }
        return escrow.Dashboard{}, fmt.Errorf("%s: %w", msg, errs.ErrUpstream)
    }
    return c.toDomain(email, *out.Data)
}

func (c *Client) toDomain(email string, p payload) (escrow.Dashboard, error) {
    if err := c.validate.Struct(p); err != nil {
        return escrow.Dashboard{}, fmt.Errorf("dashboard payload: %v: %w", err, errs.ErrUpstreamPayload)
    }
    d := escrow.Dashboard{
        Email:        escrow.NormalizeEmail(email),
        AccountID:    strings.TrimSpace(string(p.AccountID)),
        CompanyName:  strings.TrimSpace(p.CompanyName),
        Transactions: make([]escrow.Transaction, 0, len(p.Transactions)),
        BalanceSheet: p.BalanceSheet.Normalize(),
        FetchedAt:    c.now().UTC(),
    }
    for i, t := range p.Transactions {
        date, err := escrow.ParseDate(t.Date)
        if err != nil {
            return escrow.Dashboard{}, fmt.Errorf("transactions[%d]: %v: %w", i, err, errs.ErrUpstreamPayload)
        }
        d.Transactions = append(d.Transactions, escrow.Transaction{
            ID:          string(t.ID),
            Date:        date,
            Description: t.Description,
            Amount:      float64(t.Amount),
        })
    }
    if err := d.BalanceSheet.Validate(); err != nil {
        if errors.Is(err, errs.ErrInvalid) {
            return escrow.Dashboard{}, fmt.Errorf("balance sheet: %v: %w", err, errs.ErrUpstreamPayload)
        }
        return escrow.Dashboard{}, err
    }
    return d, nil
}
