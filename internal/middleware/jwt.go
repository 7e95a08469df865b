package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/salon-booking/internal/utils"
)

// bearer returns the raw token of an "Authorization: Bearer ..." header and
// whether such a header was sent at all.
func bearer(c echo.Context) (string, bool) {
    auth := c.Request().Header.Get("Authorization")
    if auth == "" {
        return "", false
    }
    if !strings.HasPrefix(auth, "Bearer ") {
        return "", true
    }
    return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")), true
}

// JWTAuth validates the Bearer access token and stores its subject and role
// in the context under "user_id" and "role" (both strings).  Requests
// without a valid token are answered with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, sent := bearer(c)
            if !sent || raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set(ctxUserID, claims.UserID)
            c.Set(ctxRole, claims.Role)
            return next(c)
        }
    }
}

// OptionalJWT is JWTAuth for routes guests may use too, like booking
// submission.  No header means guest; a header with a bad token is still
// rejected so a client never silently loses its identity.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, sent := bearer(c)
            if !sent {
                return next(c)
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set(ctxUserID, claims.UserID)
            c.Set(ctxRole, claims.Role)
            return next(c)
        }
    }
}

// TokenFromQuery copies ?<param>= into the Authorization header when the
// request has none.  The admin websocket stream needs it because browsers
// cannot set headers on a websocket handshake.
func TokenFromQuery(param string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if req.Header.Get("Authorization") == "" {
                if tok := strings.TrimSpace(c.QueryParam(param)); tok != "" {
                    req.Header.Set("Authorization", "Bearer "+tok)
                }
            }
            return next(c)
        }
    }
}
