package memory

import (
    "context"

    "github.com/tinoosan/escrow/internal/service/dashboard"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
    _ dashboard.Source                          = (*Store)(nil)
    _ interface{ Ready(context.Context) error } = (*Store)(nil)
)
