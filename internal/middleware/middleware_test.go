package middleware

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/salon-booking/internal/config"
    "github.com/iliyamo/salon-booking/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, id, role string) string {
    t.Helper()
    tok, err := utils.NewAccessToken(secret, id, role, 5)
    if err != nil {
        t.Fatal(err)
    }
    return tok.Token
}

func whoami(c echo.Context) error {
    id, ok := UserID(c)
    if !ok {
        id = "guest"
    }
    return c.String(http.StatusOK, id+"/"+Role(c))
}

func serve(e *echo.Echo, auth string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/x", nil)
    if auth != "" {
        req.Header.Set("Authorization", auth)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuth(t *testing.T) {
    e := echo.New()
    e.GET("/x", whoami, JWTAuth(secret))

    cases := []struct {
        name   string
        auth   string
        status int
        body   string
    }{
        {"missing", "", http.StatusUnauthorized, "missing bearer token"},
        {"not bearer", "Basic abc", http.StatusUnauthorized, "missing bearer token"},
        {"bad token", "Bearer nope", http.StatusUnauthorized, "invalid token"},
        {"ok", "Bearer " + token(t, "u-1", "user"), http.StatusOK, "u-1/user"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            rec := serve(e, tc.auth)
            if rec.Code != tc.status || !strings.Contains(rec.Body.String(), tc.body) {
                t.Fatalf("got %d %q, want %d containing %q", rec.Code, rec.Body.String(), tc.status, tc.body)
            }
        })
    }
}

func TestOptionalJWT(t *testing.T) {
    e := echo.New()
    e.GET("/x", whoami, OptionalJWT(secret))

    t.Run("guest", func(t *testing.T) {
        rec := serve(e, "")
        if rec.Code != http.StatusOK || rec.Body.String() != "guest/" {
            t.Fatalf("got %d %q", rec.Code, rec.Body.String())
        }
    })
    t.Run("user", func(t *testing.T) {
        rec := serve(e, "Bearer "+token(t, "u-2", "admin"))
        if rec.Code != http.StatusOK || rec.Body.String() != "u-2/admin" {
            t.Fatalf("got %d %q", rec.Code, rec.Body.String())
        }
    })
    t.Run("bad token rejected", func(t *testing.T) {
        if rec := serve(e, "Bearer junk"); rec.Code != http.StatusUnauthorized {
            t.Fatalf("got %d", rec.Code)
        }
    })
}

func TestRequireRole(t *testing.T) {
    e := echo.New()
    e.GET("/x", whoami, JWTAuth(secret), RequireRole("admin"))

    if rec := serve(e, "Bearer "+token(t, "u-1", "user")); rec.Code != http.StatusForbidden {
        t.Fatalf("user got %d", rec.Code)
    }
    if rec := serve(e, "Bearer "+token(t, "u-1", "admin")); rec.Code != http.StatusOK {
        t.Fatalf("admin got %d", rec.Code)
    }
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
    e := echo.New()
    rl := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, zap.NewNop())
    cache := NewRedisCache(config.CacheConfig{Enabled: true}, nil)
    e.GET("/x", whoami, rl, cache)
    rec := serve(e, "")
    if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
        t.Fatalf("got %d cache=%q", rec.Code, rec.Header().Get("X-Cache"))
    }
    if n, err := InvalidatePrefix(context.Background(), nil, "cache:catalog"); n != 0 || err != nil {
        t.Fatalf("invalidate without redis = %d, %v", n, err)
    }
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
    req.Header.Set("X-Real-IP", "10.0.0.1")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/bookings")

    cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
    if got := buildRateKey(cfg, c); got != "rl:ip:10.0.0.1:user:guest:route:POST /v1/bookings" {
        t.Errorf("guest key = %q", got)
    }
    c.Set(ctxUserID, "u-9")
    cfg = cfg.WithCapacity(3, "booking")
    cfg.KeyStrategy = "user"
    if got := buildRateKey(cfg, c); got != "rl:booking:user:u-9" {
        t.Errorf("user key = %q", got)
    }
}

func TestCachePayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": []string{"application/json"}}
    bs, err := encodePayload(200, hdr, []byte(`{"ok":true}`))
    if err != nil {
        t.Fatal(err)
    }
    status, gotHdr, body, ok := decodePayload(bs)
    if !ok || status != 200 || gotHdr.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
        t.Fatalf("decoded %v %v %v %q", ok, status, gotHdr, body)
    }
    if _, _, _, ok := decodePayload([]byte{1, 2}); ok {
        t.Fatal("short payload decoded")
    }
}

func TestCacheKeyDependsOnQuery(t *testing.T) {
    e := echo.New()
    cfg := config.CacheConfig{Prefix: "cache:catalog"}
    key := func(target string) string {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
        c.SetPath("/v1/services")
        return cacheKeyFrom(cfg, c)
    }
    a, b := key("/v1/services?category=skin-care"), key("/v1/services")
    if a == b || !strings.HasPrefix(a, "cache:catalog:") {
        t.Fatalf("keys %q %q", a, b)
    }
}

func TestValidator(t *testing.T) {
    type in struct {
        Email string `validate:"required,email"`
    }
    v := NewValidator()
    if err := v.Validate(&in{Email: "a@b.co"}); err != nil {
        t.Fatalf("valid input: %v", err)
    }
    if err := v.Validate(&in{Email: "nope"}); err == nil {
        t.Fatal("invalid email accepted")
    }
}
