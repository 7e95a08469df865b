package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/payment"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/realtime"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/utils"
)

// BookingHandler runs the public booking flow: slot grid, availability,
// checkout quote and the demo-paid booking itself.
type BookingHandler struct {
	Services ServiceStore
	Bookings BookingStore
	Gateway  payment.Gateway
	Notifier realtime.Notifier
	Events   BookingEvents // nil disables the booking.confirmed message
	Loc      *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

type bookingReq struct {
	Date          string `json:"booking_date" validate:"required"`
	Time          string `json:"booking_time" validate:"required"`
	Service       string `json:"service" validate:"required,max=255"`
	TableNumber   int    `json:"table_number" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required,max=255"`
	CustomerPhone string `json:"customer_phone" validate:"required,max=32"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email,max=255"`
}

func (r *bookingReq) normalize() {
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Service = strings.TrimSpace(r.Service)
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.CustomerEmail = strings.ToLower(strings.TrimSpace(r.CustomerEmail))
}

// quote is the checkout summary shown before payment.
type quote struct {
	Service     string `json:"service"`
	Price       string `json:"price"`
	Date        string `json:"booking_date"`
	Time        string `json:"booking_time"`
	TableNumber int    `json:"table_number"`
}

func (h *BookingHandler) now() time.Time {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	loc := h.Loc
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// Slots returns the fixed time slots and tables.
func (h *BookingHandler) Slots(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"time_slots": booking.TimeSlots,
		"tables":     booking.Tables,
	})
}

// Availability returns booked and free tables for ?date=&time=.
func (h *BookingHandler) Availability(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	slot := strings.TrimSpace(c.QueryParam("time"))
	if _, err := booking.ParseDate(date, h.now().Location()); err != nil {
		return badRequest(c, err.Error())
	}
	if !booking.IsSlot(slot) {
		return badRequest(c, booking.ErrUnknownSlot.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	booked, err := h.Bookings.BookedTables(ctx, date, slot)
	if err != nil {
		return serverError(c, "database error")
	}
	return c.JSON(http.StatusOK, booking.NewAvailability(date, slot, booked))
}

// prepare validates a booking request and returns the catalog entry it
// refers to.  When it returns a nil service the response has been written.
func (h *BookingHandler) prepare(ctx context.Context, c echo.Context, req *bookingReq) (*model.Service, error) {
	if msg, ok := bindValid(c, req); !ok {
		return nil, badRequest(c, msg)
	}
	req.normalize()
	if err := booking.ValidateSlot(req.Date, req.Time, req.TableNumber, h.now()); err != nil {
		return nil, badRequest(c, err.Error())
	}
	sv, err := h.Services.GetByName(ctx, req.Service)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, badRequest(c, "unknown service")
		}
		return nil, serverError(c, "database error")
	}
	booked, err := h.Bookings.BookedTables(ctx, req.Date, req.Time)
	if err != nil {
		return nil, serverError(c, "database error")
	}
	if av := booking.NewAvailability(req.Date, req.Time, booked); !av.IsFree(req.TableNumber) {
		return nil, tableTaken(c, av)
	}
	return sv, nil
}

func tableTaken(c echo.Context, av booking.Availability) error {
	metrics.IncSlotConflict()
	return c.JSON(http.StatusConflict, echo.Map{
		"error": repository.ErrSlotTaken.Error(),
		"free":  av.Free,
	})
}

// Checkout validates the form and returns the price quote.  Nothing is
// written.
func (h *BookingHandler) Checkout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var req bookingReq
	sv, err := h.prepare(ctx, c, &req)
	if sv == nil {
		return err
	}
	return c.JSON(http.StatusOK, quote{
		Service:     sv.Name,
		Price:       sv.Price,
		Date:        req.Date,
		Time:        req.Time,
		TableNumber: req.TableNumber,
	})
}

// Create charges the demo gateway and stores the booking as confirmed and
// paid.  The table is re-checked under lock by the repository; losing that
// race answers 409 with the tables still free.
func (h *BookingHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var req bookingReq
	sv, err := h.prepare(ctx, c, &req)
	if sv == nil {
		return err
	}

	receipt, err := h.Gateway.Charge(ctx, payment.Charge{
		Amount:      sv.Price,
		Description: sv.Name + " " + req.Date + " " + req.Time,
		Customer:    req.CustomerName,
	})
	if err != nil {
		h.Logger.Warn("demo payment failed", zap.Error(err))
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment failed"})
	}

	b := &model.Booking{
		Service:       sv.Name,
		Date:          req.Date,
		Time:          req.Time,
		TableNumber:   req.TableNumber,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: trimPtr(&req.CustomerEmail),
		Status:        booking.StatusConfirmed,
		PaymentStatus: booking.PaymentPaid,
		PaymentID:     &receipt.Reference,
	}
	if uid, ok := middleware.UserID(c); ok {
		b.UserID = &uid
	}

	if err := h.Bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			booked, lerr := h.Bookings.BookedTables(ctx, req.Date, req.Time)
			if lerr != nil {
				booked = nil
			}
			return tableTaken(c, booking.NewAvailability(req.Date, req.Time, booked))
		}
		h.Logger.Error("create booking", zap.Error(err))
		return serverError(c, "create booking failed")
	}
	metrics.IncBookingCreated(b.Status)
	h.Logger.Info("booking created", zap.String("booking_id", b.ID), zap.String("date", b.Date),
		zap.String("time", b.Time), zap.Int("table", b.TableNumber))

	h.announce(b)
	return c.JSON(http.StatusCreated, echo.Map{"booking": b, "payment": receipt})
}

// announce publishes the change event and the booking.confirmed message.
// Both are best effort and never fail the request.
func (h *BookingHandler) announce(b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if h.Notifier != nil {
		ev := realtime.Event{Type: realtime.EventCreated, BookingID: b.ID, Status: b.Status, At: time.Now().UTC()}
		if err := h.Notifier.Publish(ctx, ev); err != nil {
			h.Logger.Warn("publish change event", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
	if h.Events == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:     b.ID,
		Service:       b.Service,
		Date:          b.Date,
		Time:          b.Time,
		TableNumber:   b.TableNumber,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if b.UserID != nil {
		ev.UserID = *b.UserID
	}
	if b.CustomerEmail != nil {
		ev.CustomerEmail = *b.CustomerEmail
	}
	if b.PaymentID != nil {
		ev.PaymentID = *b.PaymentID
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pcancel()
		if err := h.Events.PublishBookingConfirmed(pctx, ev); err != nil {
			h.Logger.Warn("publish booking.confirmed", zap.String("booking_id", ev.BookingID), zap.Error(err))
		}
	}()
}

// QR returns a PNG QR code of the booking reference.
func (h *BookingHandler) QR(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return serverError(c, "database error")
	}
	png, err := utils.QRPNG("hairbar:booking:"+b.ID, 256)
	if err != nil {
		return serverError(c, "qr generation failed")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
