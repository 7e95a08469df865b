package config

// Redis backs three features: the rate limiter, the catalog response cache and
// the booking change feed consumed by the admin dashboard.  When the server is
// unreachable at startup the constructor returns nil; callers fall back to an
// in-process change feed and skip caching and rate limiting.

import (
    "context"
    "crypto/tls"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"
)

// RedisConfig mirrors the REDIS_* variables.
type RedisConfig struct {
    Addr        string
    Password    string
    DB          int
    TLS         bool
    TLSInsecure bool // skip server certificate verification
}

// LoadRedisConfig reads REDIS_HOST/REDIS_PORT (preferred) or REDIS_ADDR,
// REDIS_PASSWORD, REDIS_DB, REDIS_TLS and REDIS_TLS_INSECURE.
func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = host + ":" + port
    }
    tlsEnv := envStr("REDIS_TLS", "")
    return RedisConfig{
        Addr:        addr,
        Password:    envStr("REDIS_PASSWORD", ""),
        DB:          envInt("REDIS_DB", 0),
        TLS:         strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
        TLSInsecure: envBool("REDIS_TLS_INSECURE", false),
    }
}

// NewRedisClient dials Redis and pings it with a short timeout.  It returns
// nil when the server does not answer.
func NewRedisClient(cfg RedisConfig, logger *zap.Logger) *redis.Client {
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: cfg.tlsConfig(),
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        logger.Warn("redis unavailable, running without cache, rate limit and shared change feed",
            zap.String("addr", cfg.Addr), zap.Error(err))
        _ = client.Close()
        return nil
    }
    return client
}

// tlsConfig is nil when TLS is off.  Certificates are verified unless
// REDIS_TLS_INSECURE is set.
func (cfg RedisConfig) tlsConfig() *tls.Config {
    if !cfg.TLS {
        return nil
    }
    return &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: cfg.TLSInsecure}
}
