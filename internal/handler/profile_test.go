package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
)

func TestProfile(t *testing.T) {
	profiles := newFakeProfiles()
	users := newFakeUsers(profiles)
	uid := users.add(t, "me@example.com", "secret1", model.RoleUser)
	profiles.put(model.Profile{ID: uid, Email: strPtr("me@example.com"), Phone: strPtr("111")})

	other := "someone-else"
	bookings := &fakeBookings{items: []model.Booking{
		{ID: "mine", UserID: &uid, Date: "2026-10-20", Time: "09:00 AM", TableNumber: 1, Status: booking.StatusConfirmed},
		{ID: "theirs", UserID: &other, Date: "2026-10-20", Time: "09:00 AM", TableNumber: 2, Status: booking.StatusConfirmed},
		{ID: "guest", Date: "2026-10-20", Time: "09:00 AM", TableNumber: 3, Status: booking.StatusConfirmed},
	}}

	h := &ProfileHandler{Users: users, Profiles: profiles, Bookings: bookings}
	e := newEcho()
	g := e.Group("/v1/me", middleware.JWTAuth(testSecret))
	g.GET("", h.Me)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/bookings", h.MyBookings)
	token := tokenFor(t, uid, model.RoleUser)

	t.Run("me", func(t *testing.T) {
		rec := do(t, e, http.MethodGet, "/v1/me", nil, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		var out struct {
			ID      string        `json:"id"`
			Email   string        `json:"email"`
			Role    string        `json:"role"`
			Profile model.Profile `json:"profile"`
		}
		decode(t, rec, &out)
		if out.ID != uid || out.Email != "me@example.com" || out.Role != model.RoleUser || out.Profile.ID != uid {
			t.Fatalf("me = %+v", out)
		}
	})

	t.Run("me without token", func(t *testing.T) {
		if rec := do(t, e, http.MethodGet, "/v1/me", nil, ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		rec := do(t, e, http.MethodPut, "/v1/me/profile", echo.Map{"full_name": "  Meera  "}, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		var p model.Profile
		decode(t, rec, &p)
		if p.FullName == nil || *p.FullName != "Meera" {
			t.Fatalf("full_name = %v", p.FullName)
		}
		if p.Phone == nil || *p.Phone != "111" {
			t.Fatalf("phone changed: %v", p.Phone)
		}
	})

	t.Run("blank clears", func(t *testing.T) {
		rec := do(t, e, http.MethodPut, "/v1/me/profile", echo.Map{"phone": ""}, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		var p model.Profile
		decode(t, rec, &p)
		if p.Phone != nil {
			t.Fatalf("phone = %q", *p.Phone)
		}
		if p.FullName == nil || *p.FullName != "Meera" {
			t.Fatalf("full_name = %v", p.FullName)
		}
	})

	t.Run("my bookings", func(t *testing.T) {
		rec := do(t, e, http.MethodGet, "/v1/me/bookings", nil, token)
		var out struct {
			Items []model.Booking `json:"items"`
		}
		decode(t, rec, &out)
		if len(out.Items) != 1 || out.Items[0].ID != "mine" {
			t.Fatalf("items = %+v", out.Items)
		}
	})
}
