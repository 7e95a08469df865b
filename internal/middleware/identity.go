package middleware

// identity.go holds the context keys written by JWTAuth/OptionalJWT and the
// accessors handlers use to read them back.

import "github.com/labstack/echo/v4"

const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// UserID returns the authenticated user's ID, or "" and false for guests.
func UserID(c echo.Context) (string, bool) {
    s, ok := c.Get(ctxUserID).(string)
    return s, ok && s != ""
}

// Role returns the role claim of the caller, "" for guests.
func Role(c echo.Context) string {
    s, _ := c.Get(ctxRole).(string)
    return s
}

// subject is the identity used in rate limit keys.
func subject(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return id
    }
    return "guest"
}
