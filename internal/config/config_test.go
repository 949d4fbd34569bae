package config

import (
    "log/slog"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
    t.Setenv("DATA_BACKEND", "memory")
    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, ":8080", cfg.AppAddr)
    assert.Equal(t, BackendMemory, cfg.DataBackend)
    assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
    assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
    assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestLoad_AppScript(t *testing.T) {
    t.Setenv("DATA_BACKEND", " AppScript ")
    t.Setenv("UPSTREAM_URL", "https://script.google.com/macros/s/abc/exec")
    t.Setenv("UPSTREAM_TIMEOUT", "3s")
    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, BackendAppScript, cfg.DataBackend)
    assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
}

func TestValidate_CollectsProblems(t *testing.T) {
    cases := map[string]Config{
        "unknown backend":  {DataBackend: "mongo", UpstreamTimeout: time.Second},
        "appscript no url": {DataBackend: BackendAppScript, UpstreamTimeout: time.Second},
        "appscript ftp":    {DataBackend: BackendAppScript, UpstreamURL: "ftp://x", UpstreamTimeout: time.Second},
        "sheets no creds":  {DataBackend: BackendSheets, GoogleSpreadsheetID: "id", UpstreamTimeout: time.Second},
        "postgres no dsn":  {DataBackend: BackendPostgres, UpstreamTimeout: time.Second},
        "redis no ttl":     {DataBackend: BackendMemory, RedisAddr: "localhost:6379", UpstreamTimeout: time.Second},
    }
    for name, cfg := range cases {
        assert.Error(t, cfg.Validate(), name)
    }

    multi := Config{DataBackend: BackendSheets}
    err := multi.Validate()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "GOOGLE_SPREADSHEET_ID")
    assert.Contains(t, err.Error(), "UPSTREAM_TIMEOUT")
}

func TestParseLogLevel(t *testing.T) {
    assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
    assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
    assert.Equal(t, slog.LevelError, parseLogLevel("err"))
    assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}
