package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// ProfileHandler serves the signed-in user's own data.  All routes sit
// behind JWTAuth.
type ProfileHandler struct {
	Users    UserStore
	Profiles ProfileStore
	Bookings BookingStore
}

type profileReq struct {
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// Me returns id, email, role and profile of the caller.
func (h *ProfileHandler) Me(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return serverError(c, "database error")
	}
	p, err := h.Profiles.Get(ctx, uid)
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return serverError(c, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":      u.ID,
		"email":   u.Email,
		"role":    middleware.Role(c),
		"profile": p,
	})
}

// UpdateProfile applies the fields present in the body; absent fields keep
// their value and an empty string clears one.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	var req profileReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return serverError(c, "database error")
	}
	if err := copier.CopyWithOption(p, &req, copier.Option{IgnoreEmpty: true}); err != nil {
		return serverError(c, "update failed")
	}
	p.FullName = trimPtr(p.FullName)
	p.Phone = trimPtr(p.Phone)
	if err := h.Profiles.Update(ctx, p); err != nil {
		return serverError(c, "update failed")
	}
	return c.JSON(http.StatusOK, p)
}

// MyBookings lists the caller's bookings, newest first.
func (h *ProfileHandler) MyBookings(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Bookings.List(ctx, repository.BookingFilter{UserID: uid})
	if err != nil {
		return serverError(c, "database error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}
