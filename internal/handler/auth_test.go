package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/utils"
)

func authFixture() (*AuthHandler, *fakeUsers, *fakeTokens) {
	users := newFakeUsers(nil)
	tokens := newFakeTokens()
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	return NewAuthHandler(cfg, users, tokens, zap.NewNop()), users, tokens
}

func authRoutes(h *AuthHandler) *echo.Echo {
	e := newEcho()
	g := e.Group("/v1/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/refresh-access", h.RefreshAccess)
	g.POST("/logout", h.Logout, middleware.OptionalJWT(testSecret))
	return e
}

func TestRegister(t *testing.T) {
	h, _, tokens := authFixture()
	e := authRoutes(h)

	rec := do(t, e, http.MethodPost, "/v1/auth/register",
		map[string]string{"email": "New@Example.com", "password": "secret1", "full_name": "New"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var out authResp
	decode(t, rec, &out)
	if out.User.Email != "new@example.com" || out.User.Role != model.RoleUser || out.User.ID == "" {
		t.Fatalf("user = %+v", out.User)
	}
	claims, err := utils.ParseAccessToken(testSecret, out.Access.Token)
	if err != nil || claims.UserID != out.User.ID || claims.Role != model.RoleUser {
		t.Fatalf("claims = %+v err=%v", claims, err)
	}
	if out.Refresh.Token == "" || tokens.live() != 1 {
		t.Fatalf("refresh = %+v live = %d", out.Refresh, tokens.live())
	}

	t.Run("duplicate email", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/register",
			map[string]string{"email": "new@example.com", "password": "secret1"}, "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("short password", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/register",
			map[string]string{"email": "x@example.com", "password": "123"}, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestLoginRefreshLogout(t *testing.T) {
	h, users, tokens := authFixture()
	e := authRoutes(h)
	adminID := users.add(t, "boss@example.com", "hunter22", model.RoleAdmin)

	t.Run("wrong password", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/login",
			map[string]string{"email": "boss@example.com", "password": "nope"}, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/login",
			map[string]string{"email": "ghost@example.com", "password": "hunter22"}, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	rec := do(t, e, http.MethodPost, "/v1/auth/login",
		map[string]string{"email": "boss@example.com", "password": "hunter22"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body)
	}
	var login authResp
	decode(t, rec, &login)
	if login.User.ID != adminID || login.User.Role != model.RoleAdmin {
		t.Fatalf("login user = %+v", login.User)
	}

	t.Run("refresh access keeps refresh token", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/refresh-access",
			map[string]string{"refresh_token": login.Refresh.Token}, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		if tokens.live() != 1 {
			t.Fatalf("live tokens = %d", tokens.live())
		}
	})

	var rotated authResp
	t.Run("refresh rotates", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/refresh",
			map[string]string{"refresh_token": login.Refresh.Token}, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		decode(t, rec, &rotated)
		if rotated.Refresh.Token == login.Refresh.Token || rotated.User.Role != model.RoleAdmin {
			t.Fatalf("rotated = %+v", rotated)
		}
		again := do(t, e, http.MethodPost, "/v1/auth/refresh",
			map[string]string{"refresh_token": login.Refresh.Token}, "")
		if again.Code != http.StatusUnauthorized {
			t.Fatalf("reuse: status = %d", again.Code)
		}
	})

	t.Run("refresh without token", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/refresh", map[string]string{}, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("logout needs a token", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/logout", map[string]string{}, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("logout with bearer revokes all", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/v1/auth/logout", map[string]string{}, rotated.Access.Token)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		if tokens.live() != 0 {
			t.Fatalf("live tokens = %d", tokens.live())
		}
	})
}

func TestRefreshFailsWhenRevokeFails(t *testing.T) {
	h, users, tokens := authFixture()
	e := authRoutes(h)
	users.add(t, "cara@example.com", "hunter22", model.RoleUser)

	rec := do(t, e, http.MethodPost, "/v1/auth/login",
		map[string]string{"email": "cara@example.com", "password": "hunter22"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body)
	}
	var login authResp
	decode(t, rec, &login)

	tokens.revokeErr = errors.New("connection reset")
	rec = do(t, e, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh_token": login.Refresh.Token}, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if tokens.live() != 1 {
		t.Fatalf("live tokens = %d, want only the original", tokens.live())
	}
}
