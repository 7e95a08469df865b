package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
)

// RegisterPublic registers the catalog and booking flow.  None of these
// routes require a session; a bearer token, when sent, attaches the booking
// to the account.  Catalog reads are cached in Redis, booking submissions
// get their own stricter bucket.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, b *handler.BookingHandler, d Deps) {
	rl := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)

	g := e.Group("/v1", rl)
	g.GET("/services", cat.ListServices, cache)
	g.GET("/services/:id", cat.GetService, cache)
	g.GET("/categories", cat.ListCategories)

	g.GET("/booking/slots", b.Slots)
	g.GET("/booking/availability", b.Availability)

	strict := middleware.NewTokenBucket(d.RateLimit.WithCapacity(d.RateLimit.BookingCapacity, "booking"), d.Redis, d.Logger)
	opt := middleware.OptionalJWT(d.JWTSecret)
	g.POST("/booking/checkout", b.Checkout, opt, strict)
	g.POST("/bookings", b.Create, opt, strict)
	g.GET("/bookings/:id/qr", b.QR)
}
