package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
)

// RegisterAdmin registers the dashboard under /v1/admin.  Every route needs
// a valid JWT carrying the admin role.
func RegisterAdmin(e *echo.Echo, b *handler.AdminBookingHandler, s *handler.AdminServiceHandler, d Deps) {
	g := e.Group(
		"/v1/admin",
		middleware.TokenFromQuery("access_token"),
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Bookings ----
	g.GET("/bookings", b.List)
	g.GET("/bookings/stats", b.Stats)
	g.GET("/bookings/stream", b.Stream)
	g.GET("/bookings/export", b.Export)
	g.PATCH("/bookings/:id/status", b.UpdateStatus)

	// ---- Services ----
	g.GET("/services", s.List)
	g.POST("/services", s.Create)
	g.POST("/services/seed", s.SeedSamples)
	g.PUT("/services/:id", s.Update)
	g.PATCH("/services/:id", s.Update) // alias for clients that use PATCH
	g.DELETE("/services/:id", s.Delete)
}
