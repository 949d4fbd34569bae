package httpapi

import (
    "log/slog"
    "net/http"
    "runtime/debug"
    "time"

    chimw "github.com/go-chi/chi/v5/middleware"
    "github.com/unrolled/secure"
)

// requestLogger logs basic request info at INFO and panics at ERROR.
func requestLogger(l *slog.Logger) func(next http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()

            reqID := chimw.GetReqID(r.Context())
            l.Debug("request started", "req_id", reqID, "method", r.Method, "path", r.URL.Path)

            next.ServeHTTP(ww, r)

            l.Info("request complete",
                "req_id", reqID,
                "method", r.Method,
                "path", r.URL.Path,
                "status", ww.Status(),
                "bytes", ww.BytesWritten(),
                "duration", time.Since(start).String(),
            )
        })
    }
}

// recoverer logs panics as ERROR and returns 500.
func recoverer(l *slog.Logger) func(next http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            defer func() {
                if rec := recover(); rec != nil {
                    reqID := chimw.GetReqID(r.Context())
                    l.Error("panic", "req_id", reqID, "err", rec, "stack", string(debug.Stack()))
                    writeErr(w, http.StatusInternalServerError, "internal error", "internal")
                }
            }()
            next.ServeHTTP(w, r)
        })
    }
}

// secureHeaders sets the usual browser hardening headers.
func secureHeaders(l *slog.Logger, sslRedirect bool) func(next http.Handler) http.Handler {
    sm := secure.New(secure.Options{
        FrameDeny:             true,
        ContentTypeNosniff:    true,
        BrowserXssFilter:      true,
        ReferrerPolicy:        "strict-origin-when-cross-origin",
        ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'",
        SSLRedirect:           sslRedirect,
        SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
    })
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            if err := sm.Process(w, r); err != nil {
                l.Warn("secure headers blocked request", "err", err)
                return
            }
            next.ServeHTTP(w, r)
        })
    }
}
