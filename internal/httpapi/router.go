// Package httpapi wires the HTTP surface of the escrow dashboard.
// Handlers stay thin and delegate to the dashboard service.
package httpapi

import (
    "context"
    "log/slog"
    "net/http"
    "strings"
    "time"

    chi "github.com/go-chi/chi/v5"
    chimw "github.com/go-chi/chi/v5/middleware"
    "github.com/go-chi/httprate"

    "github.com/tinoosan/escrow/internal/service/dashboard"
    "github.com/tinoosan/escrow/internal/view"
)

// ReadyChecker is implemented by backends that can report readiness.
type ReadyChecker interface {
    Ready(ctx context.Context) error
}

// Options configures optional HTTP behaviour.
type Options struct {
    // RateLimitPerMinute limits dashboard reads and admin calls per client IP.
    // Zero disables it.
    RateLimitPerMinute int
    Auth               AuthConfig
    SSLRedirect        bool

    // AdminToken guards POST /v1/cache/invalidate. The route is not
    // registered when it is empty.
    AdminToken string

    // Ready is consulted by /readyz in order.
    Ready []ReadyChecker
}

// Server wires handlers and middleware using Chi.
type Server struct {
    svc   dashboard.Service
    views *view.Engine
    ready []ReadyChecker
    log   *slog.Logger
    opts  Options
    rt    *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(svc dashboard.Service, logger *slog.Logger, opts Options) (*Server, error) {
    views, err := view.NewEngine()
    if err != nil { return nil, err }

    r := chi.NewRouter()
    r.Use(chimw.RequestID)
    r.Use(requestLogger(logger))
    r.Use(recoverer(logger))
    r.Use(metricsMiddleware)
    r.Use(secureHeaders(logger, opts.SSLRedirect))
    if auth := authJWT(opts.Auth); auth != nil {
        r.Use(auth)
    }

    s := &Server{svc: svc, views: views, ready: opts.Ready, log: logger, opts: opts, rt: r}
    s.routes()
    return s, nil
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
    // Health and metrics (unversioned)
    s.rt.Get("/healthz", s.healthz)
    s.rt.Get("/readyz", s.readyz)
    s.rt.Method(http.MethodGet, "/metrics", metricsHandler())

    s.rt.Get("/v1/dictionary/categories", s.getCategories)
    s.rt.Post("/v1/balance-sheet", s.postBalanceSheet)

    s.rt.Group(func(r chi.Router) {
        if lim := s.limiter(); lim != nil {
            r.Use(lim)
        }
        r.With(s.validateEmailQuery()).Get("/v1/dashboard", s.getDashboard)
        r.With(s.validateEmailQuery()).Get("/v1/dashboard/balance-sheet", s.getBalanceSheet)
        r.Get("/dashboard", s.dashboardPage)
        if strings.TrimSpace(s.opts.AdminToken) != "" {
            r.With(requireAdmin(s.opts.AdminToken)).Post("/v1/cache/invalidate", s.invalidateCache)
        }
    })
}

func (s *Server) limiter() func(http.Handler) http.Handler {
    if s.opts.RateLimitPerMinute <= 0 { return nil }
    return httprate.Limit(s.opts.RateLimitPerMinute, time.Minute,
        httprate.WithKeyFuncs(httprate.KeyByIP),
        httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
            writeErr(w, http.StatusTooManyRequests, "too many requests", "rate_limited")
        }),
    )
}
