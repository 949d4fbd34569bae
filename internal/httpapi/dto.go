package httpapi

import (
    "time"

    "github.com/govalues/money"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/moneyfmt"
    "github.com/tinoosan/escrow/internal/service/dashboard"
)

const (
    statusOK     = "ok"
    statusNoData = "no_data"
)

type amountResponse struct {
    Currency    string `json:"currency"`
    Amount      string `json:"amount"`
    AmountMinor int64  `json:"amount_minor"`
    Formatted   string `json:"formatted"`
}

type lineItemResponse struct {
    Label     string   `json:"label"`
    Value     *float64 `json:"value"`
    Formatted string   `json:"formatted"`
    IsSubItem bool     `json:"is_sub_item"`
}

type sectionResponse struct {
    Key           balancesheet.Category `json:"key"`
    Title         string                `json:"title"`
    TotalLabel    string                `json:"total_label"`
    Side          balancesheet.Side     `json:"side"`
    Informational bool                  `json:"informational"`
    Items         []lineItemResponse    `json:"items"`
    Total         amountResponse        `json:"total"`
}

type reportResponse struct {
    Status                    string            `json:"status"`
    CompanyName               string            `json:"company_name,omitempty"`
    Sections                  []sectionResponse `json:"sections"`
    TotalAssets               amountResponse    `json:"total_assets"`
    TotalLiabilities          amountResponse    `json:"total_liabilities"`
    TotalEquity               amountResponse    `json:"total_equity"`
    TotalLiabilitiesAndEquity amountResponse    `json:"total_liabilities_and_equity"`
    Mismatch                  bool              `json:"mismatch"`
    Difference                amountResponse    `json:"difference"`
}

type noDataResponse struct {
    Status string `json:"status"`
}

type transactionResponse struct {
    ID          string    `json:"id,omitempty"`
    Date        time.Time `json:"date"`
    Description string    `json:"description"`
    Amount      float64   `json:"amount"`
    Formatted   string    `json:"formatted"`
}

type dashboardResponse struct {
    Email        string                `json:"email"`
    AccountID    string                `json:"account_id"`
    CompanyName  string                `json:"company_name"`
    Balance      amountResponse        `json:"balance"`
    OtherAssets  *amountResponse       `json:"other_assets,omitempty"`
    Transactions []transactionResponse `json:"transactions"`
    BalanceSheet any                   `json:"balance_sheet"`
    FetchedAt    time.Time             `json:"fetched_at"`
}

type categoriesResponse struct {
    Items                          []balancesheet.CategoryDef `json:"items"`
    TotalAssetsLabel               string                     `json:"total_assets_label"`
    TotalLiabilitiesAndEquityLabel string                     `json:"total_liabilities_and_equity_label"`
}

func toAmountResponse(a money.Amount) amountResponse {
    r := a.Round(2)
    units, _ := r.MinorUnits()
    return amountResponse{
        Currency:    r.Curr().Code(),
        Amount:      r.Decimal().String(),
        AmountMinor: units,
        Formatted:   moneyfmt.Format(a),
    }
}

func toReportResponse(r balancesheet.Report, company string) reportResponse {
    out := reportResponse{
        Status:                    statusOK,
        CompanyName:               company,
        Sections:                  make([]sectionResponse, 0, len(r.Sections)),
        TotalAssets:               toAmountResponse(r.TotalAssets),
        TotalLiabilities:          toAmountResponse(r.TotalLiabilities),
        TotalEquity:               toAmountResponse(r.TotalEquity),
        TotalLiabilitiesAndEquity: toAmountResponse(r.TotalLiabilitiesAndEquity),
        Mismatch:                  r.Mismatch,
        Difference:                toAmountResponse(r.Difference),
    }
    for _, sec := range r.Sections {
        items := make([]lineItemResponse, 0, len(sec.Items))
        for _, it := range sec.Items {
            items = append(items, lineItemResponse{
                Label:     it.Label,
                Value:     it.Value,
                Formatted: moneyfmt.FormatValue(it.Value),
                IsSubItem: it.IsSubItem,
            })
        }
        out.Sections = append(out.Sections, sectionResponse{
            Key:           sec.Key,
            Title:         sec.Title,
            TotalLabel:    sec.TotalLabel,
            Side:          sec.Side,
            Informational: sec.Informational,
            Items:         items,
            Total:         toAmountResponse(sec.Total),
        })
    }
    return out
}

func toSheetResponse(sh dashboard.Sheet) any {
    if !sh.HasData {
        return noDataResponse{Status: statusNoData}
    }
    return toReportResponse(sh.Report, sh.CompanyName)
}

func toDashboardResponse(v dashboard.View) dashboardResponse {
    out := dashboardResponse{
        Email:        v.Email,
        AccountID:    v.AccountID,
        CompanyName:  v.CompanyName,
        Balance:      toAmountResponse(v.Balance),
        Transactions: make([]transactionResponse, 0, len(v.Transactions)),
        BalanceSheet: toSheetResponse(v.Sheet),
        FetchedAt:    v.FetchedAt,
    }
    if v.HasOtherAssets {
        oa := toAmountResponse(v.OtherAssets)
        out.OtherAssets = &oa
    }
    for _, t := range v.Transactions {
        out.Transactions = append(out.Transactions, transactionResponse{
            ID:          t.ID,
            Date:        t.Date,
            Description: t.Description,
            Amount:      t.Amount,
            Formatted:   moneyfmt.FormatValue(&t.Amount),
        })
    }
    return out
}
