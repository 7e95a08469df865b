package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/export"
	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/realtime"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// AdminBookingHandler is the bookings side of the admin dashboard.  Routes
// are mounted behind JWTAuth and RequireRole("admin").
type AdminBookingHandler struct {
	Bookings BookingStore
	Notifier realtime.Notifier
	Logger   *zap.Logger
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// snapshot is what the dashboard renders: every booking plus the counters.
type snapshot struct {
	Type     string          `json:"type"`
	Event    *realtime.Event `json:"event,omitempty"`
	Bookings []model.Booking `json:"bookings"`
	Stats    booking.Stats   `json:"stats"`
}

func (h *AdminBookingHandler) load(ctx context.Context, status string) ([]model.Booking, booking.Stats, error) {
	list, err := h.Bookings.List(ctx, repository.BookingFilter{Status: status})
	if err != nil {
		return nil, booking.Stats{}, err
	}
	counts, err := h.Bookings.CountByStatus(ctx)
	if err != nil {
		return nil, booking.Stats{}, err
	}
	return list, booking.StatsFromCounts(counts), nil
}

// List returns all bookings, newest first, and the dashboard counters.
// ?status= narrows the list but never the counters.
func (h *AdminBookingHandler) List(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	if status != "" && !booking.IsStatus(status) {
		return badRequest(c, booking.ErrInvalidStatus.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, stats, err := h.load(ctx, status)
	if err != nil {
		return serverError(c, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "stats": stats})
}

// Stats returns the dashboard counters only.
func (h *AdminBookingHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	counts, err := h.Bookings.CountByStatus(ctx)
	if err != nil {
		return serverError(c, "database error")
	}
	return c.JSON(http.StatusOK, booking.StatsFromCounts(counts))
}

// UpdateStatus confirms or cancels a booking and notifies the dashboards.
func (h *AdminBookingHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Bookings.UpdateStatus(ctx, c.Param("id"), req.Status)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, booking.ErrTransition), errors.Is(err, repository.ErrSlotTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidStatus):
		return badRequest(c, err.Error())
	default:
		h.Logger.Error("update booking status", zap.String("booking_id", c.Param("id")), zap.Error(err))
		return serverError(c, "update failed")
	}

	metrics.IncStatusChange(b.Status)
	if h.Notifier != nil {
		ev := realtime.Event{Type: realtime.EventUpdated, BookingID: b.ID, Status: b.Status, At: time.Now().UTC()}
		if err := h.Notifier.Publish(ctx, ev); err != nil {
			h.Logger.Warn("publish change event", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, b)
}

// Stream upgrades to a websocket, sends a snapshot right away and a fresh
// one after every booking change.  Browsers cannot set headers on a
// websocket, so the route accepts the access token as ?access_token=.
func (h *AdminBookingHandler) Stream(c echo.Context) error {
	if h.Notifier == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "change feed unavailable"})
	}
	srv := websocket.Server{
		// Authentication happened in the middleware chain; any origin may connect.
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(ws *websocket.Conn) {
			defer ws.Close()
			h.stream(c.Request().Context(), ws)
		},
	}
	srv.ServeHTTP(c.Response(), c.Request())
	return nil
}

func (h *AdminBookingHandler) stream(parent context.Context, ws *websocket.Conn) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	events, unsubscribe := h.Notifier.Subscribe(ctx)
	defer unsubscribe()

	// The client never sends anything useful; a failed read means it left.
	go func() {
		var discard string
		for {
			if err := websocket.Message.Receive(ws, &discard); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func(ev *realtime.Event) error {
		lctx, lcancel := context.WithTimeout(ctx, dbTimeout)
		defer lcancel()
		list, stats, err := h.load(lctx, "")
		if err != nil {
			h.Logger.Warn("stream: reload bookings", zap.Error(err))
			return nil
		}
		kind := "snapshot"
		if ev != nil {
			kind = "change"
		}
		return websocket.JSON.Send(ws, snapshot{Type: kind, Event: ev, Bookings: list, Stats: stats})
	}

	if err := send(nil); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := send(&ev); err != nil {
				return
			}
		}
	}
}

// Export streams the bookings in [from, to] as an XLSX workbook.  Both
// bounds are optional YYYY-MM-DD dates.
func (h *AdminBookingHandler) Export(c echo.Context) error {
	from := strings.TrimSpace(c.QueryParam("from"))
	to := strings.TrimSpace(c.QueryParam("to"))
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := booking.ParseDate(d, time.UTC); err != nil {
			return badRequest(c, err.Error())
		}
	}
	if from != "" && to != "" && from > to {
		return badRequest(c, "from must not be after to")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Bookings.List(ctx, repository.BookingFilter{From: from, To: to})
	if err != nil {
		return serverError(c, "database error")
	}
	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, list, from, to); err != nil {
		h.Logger.Error("export bookings", zap.Error(err))
		return serverError(c, "export failed")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookings.xlsx"`)
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}
