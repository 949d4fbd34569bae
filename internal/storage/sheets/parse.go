package sheets

import (
    "fmt"
    "math"
    "strconv"
    "strings"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
)

// parseAccount finds the Accounts row (email, account id, company) for email.
func parseAccount(values [][]interface{}, email string) (escrow.Dashboard, bool) {
    for _, row := range values {
        cells := toStrings(row)
        if escrow.NormalizeEmail(safeGet(cells, 0)) != email {
            continue
        }
        return escrow.Dashboard{
            Email:       email,
            AccountID:   strings.TrimSpace(safeGet(cells, 1)),
            CompanyName: strings.TrimSpace(safeGet(cells, 2)),
        }, true
    }
    return escrow.Dashboard{}, false
}

// parseTransactions reads rows of (email, id, date, description, amount).
func parseTransactions(values [][]interface{}, email string) ([]escrow.Transaction, error) {
    out := make([]escrow.Transaction, 0)
    for i, row := range values {
        if escrow.NormalizeEmail(cellString(row, 0)) != email {
            continue
        }
        date, err := escrow.ParseDate(cellString(row, 2))
        if err != nil {
            return nil, fmt.Errorf("transactions row %d: %v: %w", i+2, err, errs.ErrUpstreamPayload)
        }
        amount, ok := cellFloat(row, 4)
        if !ok {
            return nil, fmt.Errorf("transactions row %d: amount %q: %w", i+2, cellString(row, 4), errs.ErrUpstreamPayload)
        }
        out = append(out, escrow.Transaction{
            ID:          strings.TrimSpace(cellString(row, 1)),
            Date:        date,
            Description: strings.TrimSpace(cellString(row, 3)),
            Amount:      amount,
        })
    }
    return out, nil
}

// parseBalanceSheet reads rows of (email, category, label, value, sub-item).
// Rows with unknown categories are skipped; a blank value is a placeholder.
// Returns nil when the holder has no balance sheet rows at all.
func parseBalanceSheet(values [][]interface{}, email string) (balancesheet.Statement, error) {
    var out balancesheet.Statement
    for i, row := range values {
        if escrow.NormalizeEmail(cellString(row, 0)) != email {
            continue
        }
        c, ok := balancesheet.ParseCategory(cellString(row, 1))
        if !ok {
            continue
        }
        label := strings.TrimSpace(cellString(row, 2))
        if label == "" {
            return nil, fmt.Errorf("balance sheet row %d: label is required: %w", i+2, errs.ErrUpstreamPayload)
        }
        item := balancesheet.LineItem{Label: label, IsSubItem: cellBool(row, 4)}
        if strings.TrimSpace(cellString(row, 3)) != "" {
            v, ok := cellFloat(row, 3)
            if !ok {
                return nil, fmt.Errorf("balance sheet row %d: value %q: %w", i+2, cellString(row, 3), errs.ErrUpstreamPayload)
            }
            item.Value = &v
        }
        if out == nil {
            out = balancesheet.Statement{}
        }
        out[string(c)] = append(out[string(c)], item)
    }
    return out, nil
}

func toStrings(row []interface{}) []string {
    out := make([]string, len(row))
    for i, v := range row {
        out[i] = fmt.Sprint(v)
    }
    return out
}

func safeGet(row []string, idx int) string {
    if idx >= 0 && idx < len(row) {
        return row[idx]
    }
    return ""
}

func cellString(row []interface{}, idx int) string {
    if idx < 0 || idx >= len(row) || row[idx] == nil {
        return ""
    }
    switch v := row[idx].(type) {
    case string:
        return v
    case float64:
        return strconv.FormatFloat(v, 'f', -1, 64)
    default:
        return fmt.Sprint(v)
    }
}

// cellFloat accepts unformatted numbers and numeric text like "$1,250.00" or "(200)".
func cellFloat(row []interface{}, idx int) (float64, bool) {
    if idx < 0 || idx >= len(row) {
        return 0, false
    }
    switch v := row[idx].(type) {
    case float64:
        return v, !math.IsNaN(v) && !math.IsInf(v, 0)
    case int:
        return float64(v), true
    case int64:
        return float64(v), true
    }
    s := strings.TrimSpace(cellString(row, idx))
    neg := false
    if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
        neg = true
        s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
    }
    s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(s)
    f, err := strconv.ParseFloat(s, 64)
    if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
        return 0, false
    }
    if neg {
        f = -f
    }
    return f, true
}

func cellBool(row []interface{}, idx int) bool {
    if idx < 0 || idx >= len(row) {
        return false
    }
    switch v := row[idx].(type) {
    case bool:
        return v
    case float64:
        return v != 0
    }
    switch strings.ToLower(strings.TrimSpace(cellString(row, idx))) {
    case "true", "yes", "y", "x", "1":
        return true
    }
    return false
}
