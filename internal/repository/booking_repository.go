package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/model"
)

// BookingRepo provides access to the bookings table.  Rows are never
// deleted; status changes are the only mutation after insert.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, created_at, updated_at, user_id, service,
	DATE_FORMAT(booking_date, '%Y-%m-%d'), booking_time, table_number,
	customer_name, customer_phone, customer_email, status, payment_status, payment_id`

const bookedTablesQuery = `SELECT table_number FROM bookings
	WHERE booking_date = ? AND booking_time = ? AND status NOT IN (?, ?)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b                    model.Booking
		userID, email, payID sql.NullString
	)
	err := s.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt, &userID, &b.Service,
		&b.Date, &b.Time, &b.TableNumber,
		&b.CustomerName, &b.CustomerPhone, &email, &b.Status, &b.PaymentStatus, &payID)
	if err != nil {
		return model.Booking{}, err
	}
	b.UserID = stringPtr(userID)
	b.CustomerEmail = stringPtr(email)
	b.PaymentID = stringPtr(payID)
	return b, nil
}

// slotArgs binds date, slot and the inactive statuses of bookedTablesQuery.
func slotArgs(date, slot string) []any {
	args := []any{date, slot}
	for _, st := range booking.InactiveStatuses {
		args = append(args, st)
	}
	return args
}

func collectInts(rows *sql.Rows) ([]int, error) {
	defer rows.Close()
	out := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BookedTables returns the table numbers that hold a live (not cancelled or
// rejected) booking for date and slot.  This is the read behind the table
// grid; it takes no locks.
func (r *BookingRepo) BookedTables(ctx context.Context, date, slot string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, bookedTablesQuery, slotArgs(date, slot)...)
	if err != nil {
		return nil, err
	}
	return collectInts(rows)
}

// bookedTablesTx is BookedTables with FOR UPDATE inside tx so that a
// concurrent booking for the same slot waits for this transaction.
func (r *BookingRepo) bookedTablesTx(ctx context.Context, tx *sql.Tx, date, slot string) ([]int, error) {
	rows, err := tx.QueryContext(ctx, bookedTablesQuery+" FOR UPDATE", slotArgs(date, slot)...)
	if err != nil {
		return nil, err
	}
	return collectInts(rows)
}

// Create inserts b after re-checking, under lock, that its table is still
// free.  ID, defaults and timestamps are filled in on success.  It returns
// ErrSlotTaken when the table is booked, either by the locked read or by the
// unique active_slot index when two inserts race.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = booking.StatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = booking.PaymentUnpaid
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booked, err := r.bookedTablesTx(ctx, tx, b.Date, b.Time)
	if err != nil {
		return fmt.Errorf("lock slot: %w", err)
	}
	for _, n := range booked {
		if n == b.TableNumber {
			return ErrSlotTaken
		}
	}

	const ins = `INSERT INTO bookings (id, user_id, service, booking_date, booking_time, table_number,
		customer_name, customer_phone, customer_email, status, payment_status, payment_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, b.ID, b.UserID, b.Service, b.Date, b.Time, b.TableNumber,
		b.CustomerName, b.CustomerPhone, b.CustomerEmail, b.Status, b.PaymentStatus, b.PaymentID); err != nil {
		if isDuplicate(err) {
			return ErrSlotTaken
		}
		return err
	}

	created, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, b.ID))
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if isDuplicate(err) {
			return ErrSlotTaken
		}
		return err
	}
	committed = true
	*b = created
	return nil
}

// GetByID returns one booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// BookingFilter narrows List.  Zero values mean "any".  From and To are
// inclusive YYYY-MM-DD bounds on booking_date.
type BookingFilter struct {
	Status string
	UserID string
	From   string
	To     string
}

// List returns bookings matching f, newest first.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	where := []string{}
	args := []any{}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.From != "" {
		where = append(where, "booking_date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "booking_date <= ?")
		args = append(args, f.To)
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus moves a booking to status if booking.CanTransition allows it
// and returns the updated row.  The current status is read under lock.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if err := booking.CanTransition(current, status); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id); err != nil {
		if isDuplicate(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	updated, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &updated, nil
}

// CountByStatus returns the number of bookings per status.
func (r *BookingRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
