package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// NewUser carries the registration form.
type NewUser struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Create inserts the user, its profile and the default "user" role in one
// transaction and returns the new ID.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?,?,?)",
		id, email, hash); err != nil {
		if isDuplicate(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (id, full_name, email, phone) VALUES (?,?,?,?)",
		id, nullString(in.FullName), email, nullString(in.Phone)); err != nil {
		return "", err
	}
	role := model.UserRole{ID: uuid.NewString(), UserID: id, Role: model.RoleUser}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_roles (id, user_id, role) VALUES (?,?,?)",
		role.ID, role.UserID, role.Role); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// HasRole reports whether the user holds role.
func (r *UserRepo) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_roles WHERE user_id=? AND role=?",
		userID, role).Scan(&n)
	return n > 0, err
}

// RoleOf returns "admin" when the user holds the admin role and "user"
// otherwise.
func (r *UserRepo) RoleOf(ctx context.Context, userID string) (string, error) {
	admin, err := r.HasRole(ctx, userID, model.RoleAdmin)
	if err != nil {
		return "", err
	}
	if admin {
		return model.RoleAdmin, nil
	}
	return model.RoleUser, nil
}

// GrantRole adds role to the user; granting an existing role is a no-op.
func (r *UserRepo) GrantRole(ctx context.Context, userID, role string) error {
	ur := model.UserRole{ID: uuid.NewString(), UserID: userID, Role: role}
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (id, user_id, role) VALUES (?,?,?)",
		ur.ID, ur.UserID, ur.Role)
	return err
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
