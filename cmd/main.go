package main

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"

    "github.com/tinoosan/escrow/internal/cache"
    "github.com/tinoosan/escrow/internal/config"
    "github.com/tinoosan/escrow/internal/escrow"
    "github.com/tinoosan/escrow/internal/httpapi"
    "github.com/tinoosan/escrow/internal/service/dashboard"
    "github.com/tinoosan/escrow/internal/storage/appscript"
    "github.com/tinoosan/escrow/internal/storage/memory"
    pgstore "github.com/tinoosan/escrow/internal/storage/postgres"
    "github.com/tinoosan/escrow/internal/storage/sheets"
)

func main() {
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    // .env is optional; real environment variables win.
    _ = godotenv.Load()

    cfg, err := config.Load()
    if err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
    logger := cfg.NewLogger()
    slog.SetDefault(logger)

    src, ready, closeFn, err := openSource(ctx, cfg, logger)
    if err != nil {
        logger.Error("failed to open data backend", "backend", cfg.DataBackend, "err", err)
        os.Exit(1)
    }
    defer closeFn()
    logger.Info("storage backend: " + cfg.DataBackend)

    opts := []dashboard.Option{
        dashboard.WithLogger(logger),
        dashboard.WithObserver(cfg.DataBackend, httpapi.Observer{}),
    }
    if cfg.RedisAddr != "" {
        c, err := cache.New(ctx, cfg.RedisAddr, cfg.CacheTTL)
        if err != nil {
            logger.Warn("redis unavailable, running without cache", "addr", cfg.RedisAddr, "err", err)
        } else {
            defer c.Close()
            opts = append(opts, dashboard.WithCache(c))
            ready = append(ready, c)
            logger.Info("dashboard cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
        }
    }
    svc := dashboard.New(src, opts...)

    api, err := httpapi.New(svc, logger, httpapi.Options{
        RateLimitPerMinute: cfg.RateLimitPerMinute,
        Auth: httpapi.AuthConfig{
            Secret:   cfg.JWTSecret,
            Issuer:   cfg.JWTIssuer,
            Audience: cfg.JWTAudience,
        },
        AdminToken: cfg.AdminToken,
        Ready: ready,
    })
    if err != nil {
        logger.Error("failed to build http api", "err", err)
        os.Exit(1)
    }

    srv := &http.Server{
        Addr:              cfg.AppAddr,
        Handler:           api.Handler(),
        ReadTimeout:       cfg.AppReadTimeout,
        ReadHeaderTimeout: 5 * time.Second,
        WriteTimeout:      cfg.AppWriteTimeout,
        IdleTimeout:       60 * time.Second,
    }

    errCh := make(chan error, 1)
    go func() {
        logger.Info("escrow dashboard listening", "addr", srv.Addr)
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
    }()

    select {
    case <-ctx.Done():
        ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        if err := srv.Shutdown(ctxShutdown); err != nil {
            logger.Error("server shutdown error", "err", err)
        }
    case err := <-errCh:
        logger.Error("server error", "err", err)
    }
}

// openSource builds the configured dashboard source along with its readiness
// checks and a close func.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (dashboard.Source, []httpapi.ReadyChecker, func(), error) {
    noop := func() {}
    switch cfg.DataBackend {
    case config.BackendAppScript:
        c, err := appscript.New(cfg.UpstreamURL, appscript.NewHTTPClient(cfg.UpstreamTimeout), cfg.UpstreamTimeout)
        if err != nil {
            return nil, nil, noop, err
        }
        return c, nil, noop, nil
    case config.BackendSheets:
        creds, err := sheets.Credentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
        if err != nil {
            return nil, nil, noop, err
        }
        c, err := sheets.New(ctx, cfg.GoogleSpreadsheetID, creds)
        if err != nil {
            return nil, nil, noop, err
        }
        return c, []httpapi.ReadyChecker{c}, noop, nil
    case config.BackendPostgres:
        pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
        if err != nil {
            return nil, nil, noop, err
        }
        if cfg.DevSeed {
            d, err := pg.SeedDev(ctx)
            if err != nil {
                logger.Error("dev seed failed", "err", err)
            } else {
                logDevSeed(logger, "postgres", d)
                printDevSeedBanner(d)
            }
        }
        return pg, []httpapi.ReadyChecker{pg}, pg.Close, nil
    default:
        store := memory.New()
        d := store.SeedDev()
        logDevSeed(logger, "memory", d)
        printDevSeedBanner(d)
        return store, []httpapi.ReadyChecker{store}, noop, nil
    }
}

// logDevSeed emits structured logs with the seeded account
func logDevSeed(l *slog.Logger, backend string, d escrow.Dashboard) {
    l.Info("DEV seed ("+backend+")", "email", d.Email, "account_id", d.AccountID, "transactions", len(d.Transactions))
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste
func printDevSeedBanner(d escrow.Dashboard) {
    fmt.Println("==================== DEV SEED ====================")
    fmt.Printf("email: %s\n", d.Email)
    fmt.Printf("account_id: %s\n", d.AccountID)
    fmt.Printf("dashboard: http://localhost:8080/dashboard?email=%s\n", d.Email)
    fmt.Println("==================================================")
}
