package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ProfileRepo reads and updates the profiles table.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Get returns the profile of userID or ErrProfileNotFound.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		p                      model.Profile
		fullName, email, phone sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, created_at, full_name, email, phone FROM profiles WHERE id=? LIMIT 1",
		userID).Scan(&p.ID, &p.CreatedAt, &fullName, &email, &phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	p.FullName = stringPtr(fullName)
	p.Email = stringPtr(email)
	p.Phone = stringPtr(phone)
	return &p, nil
}

// Update stores full_name and phone of p.  Email is owned by the users table
// and is not changed here.
func (r *ProfileRepo) Update(ctx context.Context, p *model.Profile) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET full_name=?, phone=? WHERE id=?",
		p.FullName, p.Phone, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}
