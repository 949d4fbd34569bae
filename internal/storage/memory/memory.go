// Package memory provides an in-memory dashboard source used for development and tests.
package memory

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
)

// Store is an in-memory dashboard source keyed by normalized email.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
    mu         sync.RWMutex
    dashboards map[string]escrow.Dashboard
    now        func() time.Time
}

// New constructs an empty in-memory store.
func New() *Store {
    return &Store{
        dashboards: make(map[string]escrow.Dashboard),
        now:        time.Now,
    }
}

// Seed helpers for local dev/tests.
func (s *Store) Seed(d escrow.Dashboard) {
    d = d.Clone()
    d.Email = escrow.NormalizeEmail(d.Email)
    s.mu.Lock(); s.dashboards[d.Email] = d; s.mu.Unlock()
}

func (s *Store) Reset() {
    s.mu.Lock()
    s.dashboards = map[string]escrow.Dashboard{}
    s.mu.Unlock()
}

// SeedDev stores the sample dashboard for escrow.DevEmail and returns it.
func (s *Store) SeedDev() escrow.Dashboard {
    d := escrow.SampleDashboard(escrow.DevEmail)
    s.Seed(d)
    return d
}

// Emails lists seeded account holders in sorted order.
func (s *Store) Emails() []string {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]string, 0, len(s.dashboards))
    for k := range s.dashboards {
        out = append(out, k)
    }
    sort.Strings(out)
    return out
}

// FetchDashboard returns a copy of the seeded dashboard for email.
func (s *Store) FetchDashboard(ctx context.Context, email string) (escrow.Dashboard, error) {
    if err := ctx.Err(); err != nil {
        return escrow.Dashboard{}, err
    }
    s.mu.RLock()
    d, ok := s.dashboards[escrow.NormalizeEmail(email)]
    s.mu.RUnlock()
    if !ok {
        return escrow.Dashboard{}, errs.ErrNotFound
    }
    out := d.Clone()
    out.FetchedAt = s.now().UTC()
    return out, nil
}

// Ready always succeeds; the store has no external dependency.
func (s *Store) Ready(context.Context) error { return nil }
