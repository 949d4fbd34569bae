package appscript

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/errs"
)

const okBody = `{
  "success": true,
  "data": {
    "accountId": 1042,
    "companyName": "Acme LLC",
    "transactions": [
      {"id": 1, "date": "2024-01-02T00:00:00.000Z", "description": "Deposit", "amount": 1000},
      {"id": "t-2", "date": "2024-01-05", "description": "Fee", "amount": "-25.50"}
    ],
    "balanceSheet": {
      "Current Assets": [{"label": "Cash", "value": 1000, "isSubItem": false}],
      "fixed assets": [{"label": "Land", "value": 5000}],
      "other assets": [{"label": "Deposit", "value": null}],
      "current liabilities": [{"label": "Payable", "value": 800}],
      "owner equity": [{"label": "Capital", "value": 5200}],
      "activos": [{"label": "ignored", "value": 1}]
    }
  }
}`

func newServer(t *testing.T, status int, body string, check func(r *http.Request)) *Client {
    t.Helper()
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if check != nil {
            check(r)
        }
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(status)
        _, _ = w.Write([]byte(body))
    }))
    t.Cleanup(srv.Close)
    c, err := New(srv.URL+"/macros/s/abc/exec", srv.Client(), time.Second)
    if err != nil {
        t.Fatalf("new client: %v", err)
    }
    return c
}

func TestFetchDashboard_OK(t *testing.T) {
    c := newServer(t, http.StatusOK, okBody, func(r *http.Request) {
        q := r.URL.Query()
        if q.Get("action") != "getDashboardData" || q.Get("email") != "jane+escrow@example.com" {
            t.Errorf("unexpected query: %s", r.URL.RawQuery)
        }
        if !strings.Contains(r.URL.RawQuery, "jane%2Bescrow%40example.com") {
            t.Errorf("email not url-encoded: %s", r.URL.RawQuery)
        }
    })
    d, err := c.FetchDashboard(context.Background(), "jane+escrow@example.com")
    if err != nil {
        t.Fatalf("fetch: %v", err)
    }
    if d.AccountID != "1042" || d.CompanyName != "Acme LLC" {
        t.Fatalf("unexpected account: %q / %q", d.AccountID, d.CompanyName)
    }
    if len(d.Transactions) != 2 || d.Transactions[0].ID != "1" || d.Transactions[1].Amount != -25.5 {
        t.Fatalf("unexpected transactions: %+v", d.Transactions)
    }
    if !d.Transactions[1].Date.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
        t.Fatalf("unexpected date: %v", d.Transactions[1].Date)
    }
    if _, ok := d.BalanceSheet["activos"]; ok {
        t.Fatalf("unknown category should be dropped")
    }
    if len(d.BalanceSheet.Items(balancesheet.CurrentAssets)) != 1 {
        t.Fatalf("mixed-case key should be normalized: %v", d.BalanceSheet)
    }
    r, ok, err := balancesheet.Build(d.BalanceSheet)
    if err != nil || !ok || r.Mismatch {
        t.Fatalf("expected balanced report")
    }
}

func TestFetchDashboard_HTTPError(t *testing.T) {
    c := newServer(t, http.StatusInternalServerError, `oops`, nil)
    _, err := c.FetchDashboard(context.Background(), "a@example.com")
    if !errors.Is(err, errs.ErrUpstream) || !strings.Contains(err.Error(), "status: 500") {
        t.Fatalf("expected upstream status error, got %v", err)
    }
}

func TestFetchDashboard_NotSuccessful(t *testing.T) {
    c := newServer(t, http.StatusOK, `{"success": false, "error": "Account not found"}`, nil)
    _, err := c.FetchDashboard(context.Background(), "a@example.com")
    if !errors.Is(err, errs.ErrUpstream) || !strings.Contains(err.Error(), "Account not found") {
        t.Fatalf("expected upstream error with message, got %v", err)
    }

    c = newServer(t, http.StatusOK, `{"success": false}`, nil)
    _, err = c.FetchDashboard(context.Background(), "a@example.com")
    if !errors.Is(err, errs.ErrUpstream) || !strings.Contains(err.Error(), defaultFailure) {
        t.Fatalf("expected default failure message, got %v", err)
    }
}

func TestFetchDashboard_BadPayload(t *testing.T) {
    cases := map[string]string{
        "not json":     `<html>`,
        "bad date":     `{"success": true, "data": {"transactions": [{"id": 1, "date": "yesterday", "amount": 1}]}}`,
        "missing date": `{"success": true, "data": {"transactions": [{"id": 1, "amount": 1}]}}`,
        "empty label":  `{"success": true, "data": {"balanceSheet": {"owner equity": [{"label": "", "value": 1}]}}}`,
        "bad amount":   `{"success": true, "data": {"transactions": [{"id": 1, "date": "2024-01-01", "amount": "lots"}]}}`,
    }
    for name, body := range cases {
        c := newServer(t, http.StatusOK, body, nil)
        if _, err := c.FetchDashboard(context.Background(), "a@example.com"); !errors.Is(err, errs.ErrUpstreamPayload) {
            t.Fatalf("%s: expected ErrUpstreamPayload, got %v", name, err)
        }
    }
}

func TestFetchDashboard_NoBalanceSheet(t *testing.T) {
    c := newServer(t, http.StatusOK, `{"success": true, "data": {"accountId": "A1", "transactions": []}}`, nil)
    d, err := c.FetchDashboard(context.Background(), "a@example.com")
    if err != nil {
        t.Fatalf("fetch: %v", err)
    }
    if _, ok, err := balancesheet.Build(d.BalanceSheet); err != nil || ok {
        t.Fatalf("expected no data")
    }
}

func TestNew_RejectsBadURL(t *testing.T) {
    for _, raw := range []string{"", "ftp://x", "not a url", "https://"} {
        if _, err := New(raw, nil, time.Second); err == nil {
            t.Fatalf("expected error for %q", raw)
        }
    }
}
