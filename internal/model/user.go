package model

import "time"

// Role names stored in user_roles.role.
const (
    RoleAdmin = "admin"
    RoleUser  = "user"
)

// User represents an account as stored in the `users` table.  The role is
// not a column: it is derived from user_roles (admin wins over user).
//
// Fields:
//  ID           – UUID of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account may log in.
type User struct {
    ID           string    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// UserRole is a row of `user_roles`.
type UserRole struct {
    ID     string // user_roles.id
    UserID string // user_roles.user_id
    Role   string // user_roles.role (admin | user)
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    string     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
