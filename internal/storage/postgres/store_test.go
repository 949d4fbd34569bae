package postgres

import (
    "context"
    "errors"
    "os"
    "path/filepath"
    "runtime"
    "testing"
    "time"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
)

func getTestDSN(t *testing.T) string {
    t.Helper()
    dsn := os.Getenv("TEST_DATABASE_URL")
    if dsn == "" {
        t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
    }
    return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
    t.Helper()
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    s, err := Open(ctx, dsn)
    if err != nil {
        t.Fatalf("open: %v", err)
    }
    return s
}

func applyInitSQL(t *testing.T, s *Store) {
    t.Helper()
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    // Resolve init SQL path relative to this test file so CWD doesn't matter
    _, thisFile, _, _ := runtime.Caller(0)
    repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "../../../"))
    b, err := os.ReadFile(filepath.Join(repoRoot, "db", "migrations", "0001_init.sql"))
    if err != nil {
        t.Fatalf("read init sql: %v", err)
    }
    if _, err := s.pool.Exec(ctx, string(b)); err != nil {
        t.Fatalf("apply init sql: %v", err)
    }
    if _, err := s.pool.Exec(ctx, `truncate table balance_sheet_items, balance_sheet_categories, transactions, accounts cascade`); err != nil {
        t.Fatalf("truncate: %v", err)
    }
}

func TestStore_SeedAndFetch(t *testing.T) {
    dsn := getTestDSN(t)
    s := mustOpen(t, dsn)
    defer s.Close()
    applyInitSQL(t, s)

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := s.Ready(ctx); err != nil {
        t.Fatalf("ready: %v", err)
    }

    seeded, err := s.SeedDev(ctx)
    if err != nil {
        t.Fatalf("seed: %v", err)
    }
    got, err := s.FetchDashboard(ctx, "DEMO@example.com")
    if err != nil {
        t.Fatalf("fetch: %v", err)
    }
    if got.AccountID != seeded.AccountID || got.CompanyName != seeded.CompanyName {
        t.Fatalf("unexpected account: %+v", got)
    }
    if len(got.Transactions) != len(seeded.Transactions) {
        t.Fatalf("expected %d transactions, got %d", len(seeded.Transactions), len(got.Transactions))
    }
    ca := got.BalanceSheet.Items(balancesheet.CurrentAssets)
    if len(ca) == 0 || ca[0].Label != "Cash" || ca[0].Value != nil {
        t.Fatalf("item order or placeholder lost: %+v", ca)
    }
    r, ok, err := balancesheet.Build(got.BalanceSheet)
    if err != nil || !ok || r.Mismatch {
        t.Fatalf("expected balanced report from seed")
    }

    // re-saving replaces rather than appends
    if err := s.SaveDashboard(ctx, seeded); err != nil {
        t.Fatalf("resave: %v", err)
    }
    again, _ := s.FetchDashboard(ctx, escrow.DevEmail)
    if len(again.Transactions) != len(seeded.Transactions) {
        t.Fatalf("resave duplicated transactions: %d", len(again.Transactions))
    }
}

func TestStore_NotFoundAndEmptySheet(t *testing.T) {
    dsn := getTestDSN(t)
    s := mustOpen(t, dsn)
    defer s.Close()
    applyInitSQL(t, s)
    ctx := context.Background()

    if _, err := s.FetchDashboard(ctx, "nobody@example.com"); !errors.Is(err, errs.ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
    if err := s.SaveDashboard(ctx, escrow.Dashboard{Email: "empty@example.com"}); err != nil {
        t.Fatalf("save: %v", err)
    }
    d, err := s.FetchDashboard(ctx, "empty@example.com")
    if err != nil {
        t.Fatalf("fetch: %v", err)
    }
    if _, ok, err := balancesheet.Build(d.BalanceSheet); err != nil || ok {
        t.Fatalf("expected no balance sheet data")
    }
    if err := s.SaveDashboard(ctx, escrow.Dashboard{}); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid without email, got %v", err)
    }
}

func TestStore_TransactionOrderRoundTrip(t *testing.T) {
    dsn := getTestDSN(t)
    s := mustOpen(t, dsn)
    defer s.Close()
    applyInitSQL(t, s)
    ctx := context.Background()

    day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
    want := []string{"first", "second", "third", "fourth", "fifth"}
    d := escrow.Dashboard{Email: "order@example.com"}
    for i, desc := range want {
        d.Transactions = append(d.Transactions, escrow.Transaction{ID: desc, Date: day, Description: desc, Amount: float64(i + 1)})
    }
    if err := s.SaveDashboard(ctx, d); err != nil {
        t.Fatalf("save: %v", err)
    }
    for round := 0; round < 3; round++ {
        got, err := s.FetchDashboard(ctx, d.Email)
        if err != nil {
            t.Fatalf("fetch: %v", err)
        }
        if len(got.Transactions) != len(want) {
            t.Fatalf("expected %d transactions, got %d", len(want), len(got.Transactions))
        }
        for i, tr := range got.Transactions {
            if tr.Description != want[i] {
                t.Fatalf("round %d: position %d: got %q, want %q", round, i, tr.Description, want[i])
            }
        }
    }
}

func TestStore_EmptyCategoryRoundTrip(t *testing.T) {
    dsn := getTestDSN(t)
    s := mustOpen(t, dsn)
    defer s.Close()
    applyInitSQL(t, s)
    ctx := context.Background()

    d := escrow.Dashboard{
        Email: "zero@example.com",
        BalanceSheet: balancesheet.Statement{
            "Owner Equity":   {},
            "current assets": {{Label: "Cash", Value: balancesheet.Float(0)}},
        },
    }
    if err := s.SaveDashboard(ctx, d); err != nil {
        t.Fatalf("save: %v", err)
    }
    got, err := s.FetchDashboard(ctx, d.Email)
    if err != nil {
        t.Fatalf("fetch: %v", err)
    }
    oe, ok := got.BalanceSheet[string(balancesheet.OwnerEquity)]
    if !ok || len(oe) != 0 {
        t.Fatalf("empty category should survive as an empty list: %+v", got.BalanceSheet)
    }
    r, ok, err := balancesheet.Build(got.BalanceSheet)
    if err != nil || !ok || r.Mismatch {
        t.Fatalf("expected zero report, got ok=%v err=%v mismatch=%v", ok, err, r.Mismatch)
    }

    only := escrow.Dashboard{Email: "only-empty@example.com", BalanceSheet: balancesheet.Statement{"owner equity": {}}}
    if err := s.SaveDashboard(ctx, only); err != nil {
        t.Fatalf("save: %v", err)
    }
    got, err = s.FetchDashboard(ctx, only.Email)
    if err != nil {
        t.Fatalf("fetch: %v", err)
    }
    if _, ok, err := balancesheet.Build(got.BalanceSheet); err != nil || !ok {
        t.Fatalf("a lone empty category is still data: ok=%v err=%v", ok, err)
    }
}
