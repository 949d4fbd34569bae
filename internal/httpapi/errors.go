package httpapi

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"

    "github.com/tinoosan/escrow/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
    Error string `json:"error"`
    Code  string `json:"code,omitempty"`
}

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
    toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "invalid_request") }
func unprocessable(w http.ResponseWriter, msg string) {
    writeErr(w, http.StatusUnprocessableEntity, msg, "validation_error")
}

// statusFor maps service errors onto an HTTP status, a stable code and a
// message safe to show the account holder.
func statusFor(err error) (status int, code, msg string) {
    switch {
    case errors.Is(err, errs.ErrInvalid):
        return http.StatusBadRequest, "invalid_request", err.Error()
    case errors.Is(err, errs.ErrNotFound):
        return http.StatusNotFound, "not_found", "no account found for this email"
    case errors.Is(err, errs.ErrForbidden):
        return http.StatusForbidden, "forbidden", "access denied"
    case errors.Is(err, errs.ErrUpstreamPayload):
        return http.StatusBadGateway, "upstream_payload", "the data source returned an unexpected response"
    case errors.Is(err, errs.ErrUpstream):
        return http.StatusBadGateway, "upstream_error", err.Error()
    case errors.Is(err, errs.ErrUnavailable):
        return http.StatusServiceUnavailable, "unavailable", "service unavailable"
    case errors.Is(err, context.DeadlineExceeded):
        return http.StatusGatewayTimeout, "upstream_timeout", "the data source did not respond in time"
    default:
        return http.StatusInternalServerError, "internal", "internal error"
    }
}

// writeStatusErr writes err as mapped by statusFor.
func writeStatusErr(w http.ResponseWriter, err error) {
    status, code, msg := statusFor(err)
    writeErr(w, status, msg, code)
}

func (s *Server) writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
    if status, _, _ := statusFor(err); status >= http.StatusInternalServerError {
        s.log.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
    }
    writeStatusErr(w, err)
}
