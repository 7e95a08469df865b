package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness probe.  It answers "ok" as long as the process
// serves HTTP.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// ReadyHandler reports whether the database answers.  Redis is optional, so
// its state is reported but never fails readiness.
type ReadyHandler struct {
    DB    Pinger
    Redis func(ctx context.Context) error // nil when running without Redis
}

// Ready is the readiness probe.
func (h *ReadyHandler) Ready(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    out := echo.Map{"db": "ok", "redis": "disabled"}
    status := http.StatusOK
    if err := h.DB.PingContext(ctx); err != nil {
        out["db"] = err.Error()
        status = http.StatusServiceUnavailable
    }
    if h.Redis != nil {
        if err := h.Redis(ctx); err != nil {
            out["redis"] = err.Error()
        } else {
            out["redis"] = "ok"
        }
    }
    return c.JSON(status, out)
}
