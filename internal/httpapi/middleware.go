package httpapi

import (
    "context"
    "net/http"
    "strings"

    "github.com/tinoosan/escrow/internal/escrow"
)

type ctxKey string

const ctxKeyEmail ctxKey = "validatedEmail"

// validateEmailQuery requires ?email= and stores the normalized value in the
// request context. Format checks happen in the service.
func (s *Server) validateEmailQuery() func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            email := escrow.NormalizeEmail(r.URL.Query().Get("email"))
            if email == "" {
                badRequest(w, "email is required")
                return
            }
            ctx := context.WithValue(r.Context(), ctxKeyEmail, email)
            next.ServeHTTP(w, r.WithContext(ctx))
        })
    }
}

func emailFrom(ctx context.Context) string {
    v, _ := ctx.Value(ctxKeyEmail).(string)
    return v
}

// requireJSON ensures the request has Content-Type application/json (optionally with params).
// Writes 415 if not JSON and returns false; otherwise returns true.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
    mime := strings.ToLower(strings.TrimSpace(strings.Split(r.Header.Get("Content-Type"), ";")[0]))
    if mime != "application/json" {
        writeErr(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "unsupported_media_type")
        return false
    }
    return true
}
