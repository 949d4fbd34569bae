// Package config loads runtime configuration from the environment.
package config

import (
    "fmt"
    "log/slog"
    "net/url"
    "os"
    "slices"
    "strings"
    "time"

    "github.com/kelseyhightower/envconfig"
)

// Data backends.
const (
    BackendMemory    = "memory"
    BackendAppScript = "appscript"
    BackendSheets    = "sheets"
    BackendPostgres  = "postgres"
)

var backends = []string{BackendMemory, BackendAppScript, BackendSheets, BackendPostgres}

// Config holds runtime configuration for the service.
type Config struct {
    AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
    AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"5s"`
    AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"10s"`

    LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
    LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

    DataBackend string `envconfig:"DATA_BACKEND" default:"memory"`
    DevSeed     bool   `envconfig:"DEV_SEED" default:"false"`

    UpstreamURL     string        `envconfig:"UPSTREAM_URL"`
    UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`

    DatabaseURL string `envconfig:"DATABASE_URL"`

    GoogleSpreadsheetID      string `envconfig:"GOOGLE_SPREADSHEET_ID"`
    GoogleServiceAccountJSON string `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
    GoogleServiceAccountFile string `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`

    RedisAddr string        `envconfig:"REDIS_ADDR"`
    CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

    RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`

    JWTSecret   string `envconfig:"JWT_HS256_SECRET"`
    JWTIssuer   string `envconfig:"JWT_ISSUER"`
    JWTAudience string `envconfig:"JWT_AUDIENCE"`

    // AdminToken enables POST /v1/cache/invalidate for callers presenting it.
    AdminToken string `envconfig:"ADMIN_TOKEN"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
    var cfg Config
    if err := envconfig.Process("", &cfg); err != nil {
        return nil, err
    }
    cfg.DataBackend = strings.ToLower(strings.TrimSpace(cfg.DataBackend))
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
    var problems []string

    if !slices.Contains(backends, c.DataBackend) {
        problems = append(problems, fmt.Sprintf("invalid data backend %q: must be one of %v", c.DataBackend, backends))
    }
    switch c.DataBackend {
    case BackendAppScript:
        if c.UpstreamURL == "" {
            problems = append(problems, "UPSTREAM_URL is required when using the appscript backend")
        } else if u, err := url.Parse(c.UpstreamURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
            problems = append(problems, fmt.Sprintf("invalid UPSTREAM_URL %q: must be an http(s) URL", c.UpstreamURL))
        }
    case BackendSheets:
        if c.GoogleSpreadsheetID == "" {
            problems = append(problems, "GOOGLE_SPREADSHEET_ID is required when using the sheets backend")
        }
        if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
            problems = append(problems, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheets backend")
        }
    case BackendPostgres:
        if c.DatabaseURL == "" {
            problems = append(problems, "DATABASE_URL is required when using the postgres backend")
        }
    }
    if c.UpstreamTimeout <= 0 {
        problems = append(problems, "UPSTREAM_TIMEOUT must be positive")
    }
    if c.RateLimitPerMinute < 0 {
        problems = append(problems, "RATE_LIMIT_PER_MINUTE cannot be negative")
    }
    if c.RedisAddr != "" && c.CacheTTL <= 0 {
        problems = append(problems, "CACHE_TTL must be positive when REDIS_ADDR is set")
    }

    if len(problems) > 0 {
        return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
    }
    return nil
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "debug":
        return slog.LevelDebug
    case "warn", "warning":
        return slog.LevelWarn
    case "error", "err":
        return slog.LevelError
    default:
        return slog.LevelInfo
    }
}

// NewLogger builds the process logger (slog to stdout). Format is json unless "text".
func (c *Config) NewLogger() *slog.Logger {
    opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}
    if strings.EqualFold(strings.TrimSpace(c.LogFormat), "text") {
        return slog.New(slog.NewTextHandler(os.Stdout, opts))
    }
    return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
