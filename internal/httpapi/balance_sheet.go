package httpapi

import (
    "encoding/json"
    "net/http"

    "github.com/tinoosan/escrow/internal/balancesheet"
)

const maxStatementBytes = 1 << 20

// POST /v1/balance-sheet aggregates a categorized statement without touching
// any data backend.
func (s *Server) postBalanceSheet(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) { return }
    var stmt balancesheet.Statement
    dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStatementBytes))
    if err := dec.Decode(&stmt); err != nil {
        badRequest(w, "invalid JSON: "+err.Error())
        return
    }
    stmt = stmt.Normalize()
    if err := stmt.Validate(); err != nil {
        unprocessable(w, err.Error())
        return
    }
    rep, ok, err := balancesheet.Build(stmt)
    if err != nil {
        unprocessable(w, err.Error())
        return
    }
    if !ok {
        toJSON(w, http.StatusOK, noDataResponse{Status: statusNoData})
        return
    }
    toJSON(w, http.StatusOK, toReportResponse(rep, ""))
}

// GET /v1/dictionary/categories
func (s *Server) getCategories(w http.ResponseWriter, r *http.Request) {
    toJSON(w, http.StatusOK, categoriesResponse{
        Items:                          balancesheet.Categories(),
        TotalAssetsLabel:               balancesheet.TotalAssetsLabel,
        TotalLiabilitiesAndEquityLabel: balancesheet.TotalLiabilitiesAndEquityLabel,
    })
}
