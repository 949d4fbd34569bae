package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
    ErrNotFound  = errors.New("not_found")
    ErrForbidden = errors.New("forbidden")
    ErrInvalid   = errors.New("invalid")
    // ErrUpstream is returned when the remote data source fails or reports success=false
    ErrUpstream = errors.New("upstream")
    // ErrUpstreamPayload indicates the remote answered but the payload shape is wrong
    ErrUpstreamPayload = errors.New("upstream_payload")
    // ErrUnavailable means the backend is not configured or not ready
    ErrUnavailable = errors.New("unavailable")
)
