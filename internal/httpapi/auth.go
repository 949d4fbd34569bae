package httpapi

import (
    "crypto/hmac"
    "crypto/sha256"
    "crypto/subtle"
    "encoding/base64"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
)

// adminTokenHeader carries the operator token for admin endpoints.
const adminTokenHeader = "X-Admin-Token"

// AuthConfig enables HS256 bearer auth when Secret is set.
type AuthConfig struct {
    Secret   string
    Issuer   string
    Audience string
}

type JWTClaims struct {
    Issuer    string `json:"iss,omitempty"`
    Subject   string `json:"sub,omitempty"`
    Audience  any    `json:"aud,omitempty"` // string or []string
    ExpiresAt int64  `json:"exp,omitempty"`
    NotBefore int64  `json:"nbf,omitempty"`
    IssuedAt  int64  `json:"iat,omitempty"`
}

func parseBearerToken(r *http.Request) (string, bool) {
    h := r.Header.Get("Authorization")
    if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "Bearer ") { return "", false }
    tok := strings.TrimSpace(h[len("Bearer "):])
    return tok, tok != ""
}

func verifyHS256(token, secret string) (JWTClaims, error) {
    var empty JWTClaims
    parts := strings.Split(token, ".")
    if len(parts) != 3 {
        return empty, errors.New("invalid token format")
    }
    headerB, err := base64.RawURLEncoding.DecodeString(parts[0])
    if err != nil { return empty, errors.New("bad header b64") }
    payloadB, err := base64.RawURLEncoding.DecodeString(parts[1])
    if err != nil { return empty, errors.New("bad payload b64") }
    sigB, err := base64.RawURLEncoding.DecodeString(parts[2])
    if err != nil { return empty, errors.New("bad signature b64") }

    var hdr struct{ Alg, Typ string }
    if err := json.Unmarshal(headerB, &hdr); err != nil {
        return empty, errors.New("bad header json")
    }
    if !strings.EqualFold(hdr.Alg, "HS256") {
        return empty, errors.New("unsupported alg")
    }

    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write([]byte(parts[0] + "." + parts[1]))
    if !hmac.Equal(sigB, mac.Sum(nil)) {
        return empty, errors.New("invalid signature")
    }

    var claims JWTClaims
    if err := json.Unmarshal(payloadB, &claims); err != nil {
        return empty, errors.New("bad claims json")
    }
    return claims, nil
}

func audContains(aud any, expected string) bool {
    if expected == "" { return true }
    switch v := aud.(type) {
    case string:
        return strings.EqualFold(v, expected)
    case []any:
        for _, it := range v {
            if s, ok := it.(string); ok && strings.EqualFold(s, expected) {
                return true
            }
        }
    }
    return false
}

func (c JWTClaims) valid(cfg AuthConfig, now time.Time) bool {
    ts := now.Unix()
    if c.NotBefore != 0 && ts < c.NotBefore { return false }
    if c.ExpiresAt != 0 && ts >= c.ExpiresAt { return false }
    if cfg.Issuer != "" && !strings.EqualFold(c.Issuer, cfg.Issuer) { return false }
    return audContains(c.Audience, cfg.Audience)
}

func isPublicPath(p string) bool {
    switch p {
    case "/healthz", "/readyz", "/metrics":
        return true
    }
    return strings.HasPrefix(p, "/v1/dictionary/")
}

// authJWT returns a middleware that enforces Authorization: Bearer JWT (HS256)
// when a secret is configured. A request naming an email must carry a token
// whose subject is that email.
func authJWT(cfg AuthConfig) func(http.Handler) http.Handler {
    secret := strings.TrimSpace(cfg.Secret)
    if secret == "" {
        return nil
    }
    cfg.Issuer = strings.TrimSpace(cfg.Issuer)
    cfg.Audience = strings.TrimSpace(cfg.Audience)
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            if isPublicPath(r.URL.Path) {
                next.ServeHTTP(w, r)
                return
            }
            tok, ok := parseBearerToken(r)
            if !ok {
                writeErr(w, http.StatusUnauthorized, "missing bearer token", "unauthorized")
                return
            }
            claims, err := verifyHS256(tok, secret)
            if err != nil || !claims.valid(cfg, time.Now()) {
                writeErr(w, http.StatusUnauthorized, "invalid token", "unauthorized")
                return
            }
            if email := r.URL.Query().Get("email"); email != "" &&
                escrow.NormalizeEmail(email) != escrow.NormalizeEmail(claims.Subject) {
                writeStatusErr(w, fmt.Errorf("token subject %q cannot read %q: %w", claims.Subject, email, errs.ErrForbidden))
                return
            }
            next.ServeHTTP(w, r)
        })
    }
}

// requireAdmin rejects requests whose X-Admin-Token does not match token.
func requireAdmin(token string) func(http.Handler) http.Handler {
    want := []byte(strings.TrimSpace(token))
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            got := []byte(strings.TrimSpace(r.Header.Get(adminTokenHeader)))
            if len(got) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
                writeStatusErr(w, fmt.Errorf("admin token rejected: %w", errs.ErrForbidden))
                return
            }
            next.ServeHTTP(w, r)
        })
    }
}
