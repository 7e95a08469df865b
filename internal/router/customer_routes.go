package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
)

// RegisterProfile registers the signed-in user's endpoints under /v1/me.
// Any role may use them.
func RegisterProfile(e *echo.Echo, h *handler.ProfileHandler, d Deps) {
	g := e.Group("/v1/me", middleware.JWTAuth(d.JWTSecret))
	g.GET("", h.Me)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/bookings", h.MyBookings)
}
