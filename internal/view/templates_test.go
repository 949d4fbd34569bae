package view

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/escrow"
    "github.com/tinoosan/escrow/internal/service/dashboard"
)

func render(t *testing.T, name string, data TemplateData) string {
    t.Helper()
    engine, err := NewEngine()
    require.NoError(t, err)
    rec := httptest.NewRecorder()
    require.NoError(t, engine.Render(rec, http.StatusOK, name, data))
    assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
    return rec.Body.String()
}

func sheetFor(t *testing.T, s balancesheet.Statement, company string) dashboard.Sheet {
    t.Helper()
    r, ok, err := balancesheet.Build(s)
    require.NoError(t, err)
    return dashboard.Sheet{CompanyName: company, Report: r, HasData: ok}
}

func emptyView(sheet dashboard.Sheet) dashboard.View {
    return dashboard.View{Balance: balancesheet.Zero(), OtherAssets: balancesheet.Zero(), Sheet: sheet}
}

func TestNewEngine(t *testing.T) {
    engine, err := NewEngine()
    assert.NoError(t, err, "Templates should parse without error")
    assert.NotNil(t, engine)
}

func TestRender_Dashboard(t *testing.T) {
    d := escrow.SampleDashboard(escrow.DevEmail)
    balance, err := balancesheet.Sum(d.Amounts()...)
    require.NoError(t, err)
    other, err := balancesheet.CategoryTotal(d.BalanceSheet.Items(balancesheet.OtherAssets))
    require.NoError(t, err)
    v := dashboard.View{
        Email:          d.Email,
        AccountID:      "ACC-1",
        CompanyName:    d.Company(),
        Transactions:   d.Transactions,
        Balance:        balance,
        OtherAssets:    other,
        HasOtherAssets: true,
        Sheet:          sheetFor(t, d.BalanceSheet, d.Company()),
        FetchedAt:      time.Now(),
    }
    html := render(t, "dashboard", TemplateData{Title: "Escrow Dashboard", Data: v})

    assert.Contains(t, html, "$28,349.50")
    assert.Contains(t, html, "Jan 2, 2024")
    assert.Contains(t, html, "&minus;$450.00")
    assert.Contains(t, html, "ACME HOLDINGS LLC")
    assert.Contains(t, html, "BALANCE SHEET")
    assert.Contains(t, html, `<td>Prepaid expenses</td><td class="amount">-</td>`)
    assert.Contains(t, html, `<tr class="sub-item"><td>Operating account</td>`)
    assert.Contains(t, html, "Total Current Assets")
    assert.Contains(t, html, "$80,000.00")
    assert.Contains(t, html, "Total Liabilities and Equity")
    assert.NotContains(t, html, "do not equal")
}

func TestRender_BalanceSheetMismatch(t *testing.T) {
    s := balancesheet.Statement{
        "current assets":      {{Label: "Cash", Value: balancesheet.Float(1000)}},
        "fixed assets":        {{Label: "Land", Value: balancesheet.Float(5000)}},
        "current liabilities": {{Label: "Payable", Value: balancesheet.Float(800)}},
        "owner equity":        {{Label: "Capital", Value: balancesheet.Float(5000)}},
    }
    html := render(t, "dashboard", TemplateData{Title: "x", Data: emptyView(sheetFor(t, s, "Acme"))})
    assert.Contains(t, html, "Total Assets do not equal Total Liabilities and Equity. The difference is $200.00.")
    assert.NotContains(t, html, "Other Assets", "empty informational section is hidden")
}

func TestRender_NoData(t *testing.T) {
    html := render(t, "dashboard", TemplateData{Title: "x", Data: emptyView(sheetFor(t, nil, escrow.DefaultCompanyName))})
    assert.Contains(t, html, "No financial data available to display.")
    assert.Contains(t, html, "YOUR COMPANY")
    assert.Contains(t, html, "No transactions yet.")
    assert.NotContains(t, html, "Total Assets")
}

func TestRender_Error(t *testing.T) {
    html := render(t, "error", TemplateData{Title: "Not found", Data: "No account for <script>"})
    assert.Contains(t, html, "No account for &lt;script&gt;")
}
