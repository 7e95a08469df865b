package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/salon-booking/internal/metrics"
)

// RequestLog logs one line per request and records its metrics.  The route
// label is the registered path (":id" form) to keep metric cardinality low.
func RequestLog(logger *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            took := time.Since(start)

            req := c.Request()
            res := c.Response()
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            metrics.ObserveRequest(req.Method, route, res.Status, took)

            fields := []zap.Field{
                zap.String("method", req.Method),
                zap.String("path", req.URL.Path),
                zap.String("route", route),
                zap.Int("status", res.Status),
                zap.Duration("latency", took),
                zap.String("ip", c.RealIP()),
                zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
            }
            if id, ok := UserID(c); ok {
                fields = append(fields, zap.String("user_id", id))
            }
            switch {
            case res.Status >= 500:
                logger.Error("request", append(fields, zap.Error(err))...)
            case res.Status >= 400:
                logger.Warn("request", fields...)
            default:
                logger.Info("request", fields...)
            }
            return nil
        }
    }
}
