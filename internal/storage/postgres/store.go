package postgres

// Package postgres provides a pgx-backed dashboard source.
//
// It is intentionally small and explicit. Migrations that create the expected
// schema live under db/migrations. This package focuses on mapping between the
// domain entities and SQL rows and running the necessary statements/transactions.

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
)

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
    pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
    cfg, err := pgxpool.ParseConfig(dsn)
    if err != nil { return nil, err }
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil { return nil, err }
    // Verify connection
    if err := pool.Ping(ctx); err != nil { pool.Close(); return nil, err }
    return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { if s.pool != nil { s.pool.Close() } }

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// SeedDev stores the sample dashboard for escrow.DevEmail, replacing any previous copy.
func (s *Store) SeedDev(ctx context.Context) (escrow.Dashboard, error) {
    d := escrow.SampleDashboard(escrow.DevEmail)
    if err := s.SaveDashboard(ctx, d); err != nil { return escrow.Dashboard{}, err }
    return d, nil
}

// SaveDashboard upserts the account and replaces its transactions and balance sheet items.
func (s *Store) SaveDashboard(ctx context.Context, d escrow.Dashboard) error {
    email := escrow.NormalizeEmail(d.Email)
    if email == "" { return fmt.Errorf("email is required: %w", errs.ErrInvalid) }
    if err := d.BalanceSheet.Validate(); err != nil { return err }

    tx, err := s.pool.Begin(ctx)
    if err != nil { return err }
    defer func() { _ = tx.Rollback(ctx) }()

    var accountID uuid.UUID
    err = tx.QueryRow(ctx, `
        insert into accounts (id, email, account_ref, company_name)
        values ($1, $2, $3, $4)
        on conflict (email) do update set account_ref = excluded.account_ref, company_name = excluded.company_name
        returning id
    `, uuid.New(), email, strings.TrimSpace(d.AccountID), strings.TrimSpace(d.CompanyName)).Scan(&accountID)
    if err != nil { return fmt.Errorf("upsert account: %w", err) }

    for _, table := range []string{"transactions", "balance_sheet_items", "balance_sheet_categories"} {
        if _, err := tx.Exec(ctx, `delete from `+table+` where account_id = $1`, accountID); err != nil { return err }
    }

    for i, t := range d.Transactions {
        if _, err := tx.Exec(ctx, `
            insert into transactions (id, account_id, position, ref, occurred_at, description, amount)
            values ($1, $2, $3, $4, $5, $6, $7)
        `, uuid.New(), accountID, i, t.ID, t.Date.UTC(), t.Description, t.Amount); err != nil {
            return fmt.Errorf("insert transaction: %w", err)
        }
    }
    stmt := d.BalanceSheet.Normalize()
    for _, def := range balancesheet.Categories() {
        items, ok := stmt[string(def.Key)]
        if !ok { continue }
        // A present but empty category is still data.
        if _, err := tx.Exec(ctx, `
            insert into balance_sheet_categories (account_id, category) values ($1, $2)
        `, accountID, string(def.Key)); err != nil {
            return fmt.Errorf("insert balance sheet category: %w", err)
        }
        for i, it := range items {
            if _, err := tx.Exec(ctx, `
                insert into balance_sheet_items (account_id, category, position, label, value, is_sub_item)
                values ($1, $2, $3, $4, $5, $6)
            `, accountID, string(def.Key), i, it.Label, it.Value, it.IsSubItem); err != nil {
                return fmt.Errorf("insert balance sheet item: %w", err)
            }
        }
    }
    return tx.Commit(ctx)
}

// FetchDashboard implements dashboard.Source.
func (s *Store) FetchDashboard(ctx context.Context, email string) (escrow.Dashboard, error) {
    email = escrow.NormalizeEmail(email)
    d := escrow.Dashboard{Email: email}
    var accountID uuid.UUID
    err := s.pool.QueryRow(ctx, `
        select id, account_ref, company_name from accounts where email = $1
    `, email).Scan(&accountID, &d.AccountID, &d.CompanyName)
    if errors.Is(err, pgx.ErrNoRows) { return escrow.Dashboard{}, errs.ErrNotFound }
    if err != nil { return escrow.Dashboard{}, err }
    if d.AccountID == "" { d.AccountID = accountID.String() }

    if d.Transactions, err = s.transactions(ctx, accountID); err != nil { return escrow.Dashboard{}, err }
    if d.BalanceSheet, err = s.balanceSheet(ctx, accountID); err != nil { return escrow.Dashboard{}, err }
    d.FetchedAt = time.Now().UTC()
    return d, nil
}

func (s *Store) transactions(ctx context.Context, accountID uuid.UUID) ([]escrow.Transaction, error) {
    rows, err := s.pool.Query(ctx, `
        select ref, occurred_at, description, amount::float8
        from transactions
        where account_id = $1
        order by position
    `, accountID)
    if err != nil { return nil, err }
    defer rows.Close()
    out := make([]escrow.Transaction, 0)
    for rows.Next() {
        var t escrow.Transaction
        if err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.Amount); err != nil { return nil, err }
        t.Date = t.Date.UTC()
        out = append(out, t)
    }
    return out, rows.Err()
}

// balanceSheet returns nil when the account has no stored categories so the
// report shows "no data". Stored categories without items come back as empty
// lists.
func (s *Store) balanceSheet(ctx context.Context, accountID uuid.UUID) (balancesheet.Statement, error) {
    rows, err := s.pool.Query(ctx, `
        select c.category, i.label, i.value::float8, i.is_sub_item
        from balance_sheet_categories c
        left join balance_sheet_items i on i.account_id = c.account_id and i.category = c.category
        where c.account_id = $1
        order by c.category, i.position
    `, accountID)
    if err != nil { return nil, err }
    defer rows.Close()
    var out balancesheet.Statement
    for rows.Next() {
        var (
            category  string
            label     *string
            value     *float64
            isSubItem *bool
        )
        if err := rows.Scan(&category, &label, &value, &isSubItem); err != nil { return nil, err }
        if out == nil { out = balancesheet.Statement{} }
        if label == nil {
            out[category] = []balancesheet.LineItem{}
            continue
        }
        out[category] = append(out[category], balancesheet.LineItem{Label: *label, Value: value, IsSubItem: isSubItem != nil && *isSubItem})
    }
    return out, rows.Err()
}
