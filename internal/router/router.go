package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/salon-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// Deps carries what the route groups need besides their handlers.  A nil
// Redis disables caching and rate limiting.
type Deps struct {
	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Logger    *zap.Logger
}

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, ready *handler.ReadyHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", ready.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the authentication routes under /v1/auth.  They are
// rate limited per IP since they are the usual target of credential stuffing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, d Deps) {
	rl := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger)
	g := e.Group("/v1/auth", rl)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body or a bearer token.
	g.POST("/logout", a.Logout, middleware.OptionalJWT(d.JWTSecret))
}
