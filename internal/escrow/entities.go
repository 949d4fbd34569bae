package escrow

import (
    "fmt"
    "strings"
    "time"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/errs"
)

// DefaultCompanyName is shown when the data source has no company on file.
const DefaultCompanyName = "Your Company"

// Transaction is a single movement on the escrow account. Amount is in major
// units; negative amounts are withdrawals.
type Transaction struct {
    ID          string    `json:"id"`
    Date        time.Time `json:"date"`
    Description string    `json:"description"`
    Amount      float64   `json:"amount"`
}

// Dashboard is everything a data source returns for one account holder.
type Dashboard struct {
    Email        string                 `json:"email"`
    AccountID    string                 `json:"account_id"`
    CompanyName  string                 `json:"company_name"`
    Transactions []Transaction          `json:"transactions"`
    BalanceSheet balancesheet.Statement `json:"balance_sheet"`
    FetchedAt    time.Time              `json:"fetched_at"`
}

// Company returns the company name or the default when blank.
func (d Dashboard) Company() string {
    if strings.TrimSpace(d.CompanyName) == "" {
        return DefaultCompanyName
    }
    return d.CompanyName
}

// Amounts returns the transaction amounts in order.
func (d Dashboard) Amounts() []float64 {
    out := make([]float64, len(d.Transactions))
    for i, t := range d.Transactions {
        out[i] = t.Amount
    }
    return out
}

// NormalizeEmail trims and lowercases an email address used as a lookup key.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02", "2006-01-02 15:04:05", "1/2/2006"}

// ParseDate accepts the timestamp shapes produced by the data sources and returns UTC.
func ParseDate(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    for _, l := range dateLayouts {
        if t, err := time.Parse(l, s); err == nil {
            return t.UTC(), nil
        }
    }
    return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, errs.ErrInvalid)
}

// Clone returns a deep copy so callers can hand out dashboards without sharing slices.
func (d Dashboard) Clone() Dashboard {
    out := d
    out.Transactions = append([]Transaction(nil), d.Transactions...)
    if d.BalanceSheet != nil {
        out.BalanceSheet = make(balancesheet.Statement, len(d.BalanceSheet))
        for k, items := range d.BalanceSheet {
            out.BalanceSheet[k] = append([]balancesheet.LineItem(nil), items...)
        }
    }
    return out
}
