// Package dashboard implements the account holder's dashboard: escrow balance
// from transactions, the informational other-assets card and the aggregated
// balance sheet. Data comes from a pluggable Source, optionally behind a cache.
package dashboard

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/govalues/money"
    "golang.org/x/sync/singleflight"

    "github.com/tinoosan/escrow/internal/balancesheet"
    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
)

// Source loads the raw dashboard for an account holder.
type Source interface {
    FetchDashboard(ctx context.Context, email string) (escrow.Dashboard, error)
}

// Cache is the subset of the Redis cache used by the service.
type Cache interface {
    BuildKey(ctx context.Context, parts ...string) (string, error)
    FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
    Bump(ctx context.Context) (int64, error)
}

// Observer receives fetch timings and mismatch events (metrics).
type Observer interface {
    ObserveFetch(backend, outcome string, d time.Duration)
    ObserveMismatch()
}

type Service interface {
    Dashboard(ctx context.Context, email string) (View, error)
    BalanceSheet(ctx context.Context, email string) (Sheet, error)
    Invalidate(ctx context.Context) error
}

// Sheet is the balance sheet part of a dashboard.
type Sheet struct {
    CompanyName string
    Report      balancesheet.Report
    // HasData is false when the statement had no recognized category.
    HasData bool
}

// View is the assembled dashboard.
type View struct {
    Email          string
    AccountID      string
    CompanyName    string
    Transactions   []escrow.Transaction
    Balance        money.Amount
    OtherAssets    money.Amount
    HasOtherAssets bool
    Sheet          Sheet
    FetchedAt      time.Time
}

// DefaultLoadTimeout bounds a shared load when no caller deadline applies.
const DefaultLoadTimeout = 30 * time.Second

type Option func(*service)

// WithLoadTimeout bounds each shared backend load. Non-positive values are ignored.
func WithLoadTimeout(d time.Duration) Option {
    return func(s *service) {
        if d > 0 {
            s.loadTimeout = d
        }
    }
}

// WithCache puts loads behind c. A nil cache is ignored.
func WithCache(c Cache) Option { return func(s *service) { s.cache = c } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

// WithObserver reports fetches under the given backend name.
func WithObserver(backend string, o Observer) Option {
    return func(s *service) { s.backend = backend; s.obs = o }
}

type service struct {
    src      Source
    cache    Cache
    log      *slog.Logger
    backend  string
    obs      Observer
    validate *validator.Validate
    group    singleflight.Group

    loadTimeout time.Duration
}

func New(src Source, opts ...Option) Service {
    s := &service{src: src, log: slog.Default(), backend: "unknown", validate: validator.New(), loadTimeout: DefaultLoadTimeout}
    for _, o := range opts {
        o(s)
    }
    return s
}

func (s *service) Dashboard(ctx context.Context, email string) (View, error) {
    email = escrow.NormalizeEmail(email)
    if err := s.validate.Var(email, "required,email"); err != nil {
        return View{}, fmt.Errorf("email %q: %w", email, errs.ErrInvalid)
    }
    d, err := s.load(ctx, email)
    if err != nil {
        return View{}, err
    }
    balance, err := balancesheet.Sum(d.Amounts()...)
    if err != nil {
        return View{}, fmt.Errorf("transactions of %s: %v: %w", email, err, errs.ErrUpstreamPayload)
    }
    other := d.BalanceSheet.Items(balancesheet.OtherAssets)
    otherTotal, err := balancesheet.CategoryTotal(other)
    if err != nil {
        return View{}, fmt.Errorf("other assets of %s: %v: %w", email, err, errs.ErrUpstreamPayload)
    }
    sheet, err := s.sheet(email, d)
    if err != nil {
        return View{}, err
    }
    v := View{
        Email:          email,
        AccountID:      d.AccountID,
        CompanyName:    d.Company(),
        Transactions:   d.Transactions,
        Balance:        balance,
        OtherAssets:    otherTotal,
        HasOtherAssets: len(other) > 0,
        Sheet:          sheet,
        FetchedAt:      d.FetchedAt,
    }
    return v, nil
}

func (s *service) BalanceSheet(ctx context.Context, email string) (Sheet, error) {
    v, err := s.Dashboard(ctx, email)
    if err != nil {
        return Sheet{}, err
    }
    return v.Sheet, nil
}

// Invalidate drops every cached dashboard.
func (s *service) Invalidate(ctx context.Context) error {
    if s.cache == nil {
        return nil
    }
    ver, err := s.cache.Bump(ctx)
    if err != nil {
        return fmt.Errorf("cache bump: %w", err)
    }
    s.log.Info("dashboard cache invalidated", "version", ver)
    return nil
}

func (s *service) sheet(email string, d escrow.Dashboard) (Sheet, error) {
    r, ok, err := balancesheet.Build(d.BalanceSheet)
    if err != nil {
        return Sheet{}, fmt.Errorf("balance sheet of %s: %v: %w", email, err, errs.ErrUpstreamPayload)
    }
    if ok && r.Mismatch {
        s.log.Warn("balance sheet does not balance", "email", email, "difference", r.Difference.Decimal().String())
        if s.obs != nil {
            s.obs.ObserveMismatch()
        }
    }
    return Sheet{CompanyName: d.Company(), Report: r, HasData: ok}, nil
}

// load collapses concurrent loads for the same email and consults the cache.
// The shared load outlives any single caller; each caller still stops
// waiting when its own ctx ends.
func (s *service) load(ctx context.Context, email string) (escrow.Dashboard, error) {
    ch := s.group.DoChan(email, func() (any, error) {
        lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
        defer cancel()
        return s.cached(lctx, email)
    })
    select {
    case <-ctx.Done():
        return escrow.Dashboard{}, ctx.Err()
    case res := <-ch:
        if res.Err != nil {
            return escrow.Dashboard{}, res.Err
        }
        return res.Val.(escrow.Dashboard).Clone(), nil
    }
}

func (s *service) cached(ctx context.Context, email string) (escrow.Dashboard, error) {
    if s.cache == nil {
        return s.fetch(ctx, email)
    }
    key, err := s.cache.BuildKey(ctx, "dashboard", email)
    if err != nil {
        s.log.Warn("cache unavailable, loading directly", "email", email, "err", err)
        return s.fetch(ctx, email)
    }
    var (
        out       escrow.Dashboard
        loaderErr error
    )
    err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
        d, err := s.fetch(ctx, email)
        loaderErr = err
        return d, err
    })
    if err == nil {
        return out, nil
    }
    if loaderErr != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
        return escrow.Dashboard{}, err
    }
    s.log.Warn("cache read failed, loading directly", "email", email, "err", err)
    return s.fetch(ctx, email)
}

func (s *service) fetch(ctx context.Context, email string) (escrow.Dashboard, error) {
    start := time.Now()
    d, err := s.src.FetchDashboard(ctx, email)
    outcome := "ok"
    switch {
    case err == nil:
    case errors.Is(err, errs.ErrNotFound):
        outcome = "not_found"
    default:
        outcome = "error"
        s.log.Error("dashboard fetch failed", "email", email, "backend", s.backend, "err", err)
    }
    if s.obs != nil {
        s.obs.ObserveFetch(s.backend, outcome, time.Since(start))
    }
    if err != nil {
        return escrow.Dashboard{}, err
    }
    if d.Email == "" {
        d.Email = email
    }
    if d.FetchedAt.IsZero() {
        d.FetchedAt = time.Now().UTC()
    }
    return d, nil
}
