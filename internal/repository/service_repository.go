package repository

import (
	"context"      // context carries request deadlines into queries
	"database/sql" // sql provides the connection pool and null types
	"errors"       // errors is used to match sql.ErrNoRows

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ServiceRepo encapsulates all queries on the services catalog.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo constructs a ServiceRepo with the provided DB handle.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceColumns = `id, created_at, updated_at, name, category, description, duration, price, image_url`

func scanService(s rowScanner) (model.Service, error) {
	var (
		sv                  model.Service
		desc, dur, imageURL sql.NullString
	)
	if err := s.Scan(&sv.ID, &sv.CreatedAt, &sv.UpdatedAt, &sv.Name, &sv.Category,
		&desc, &dur, &sv.Price, &imageURL); err != nil {
		return model.Service{}, err
	}
	sv.Description = stringPtr(desc)
	sv.Duration = stringPtr(dur)
	sv.ImageURL = stringPtr(imageURL)
	return sv, nil
}

// List returns the catalog newest first.  An empty category returns every
// service.
func (r *ServiceRepo) List(ctx context.Context, category string) ([]model.Service, error) {
	q := `SELECT ` + serviceColumns + ` FROM services`
	args := []any{}
	if category != "" {
		q += ` WHERE category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		sv, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches one service.  It returns ErrServiceNotFound if no row
// matches.
func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*model.Service, error) {
	sv, err := scanService(r.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &sv, nil
}

// GetByName fetches the newest service with the given display name.  The
// booking form submits services by name, so this is what checkout uses to
// look up the price.
func (r *ServiceRepo) GetByName(ctx context.Context, name string) (*model.Service, error) {
	sv, err := scanService(r.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE name = ? ORDER BY created_at DESC LIMIT 1`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &sv, nil
}

const insertService = `INSERT INTO services (id, name, category, description, duration, price, image_url)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

// Create inserts sv and refreshes it with the stored row.
func (r *ServiceRepo) Create(ctx context.Context, sv *model.Service) error {
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}
	if _, err := r.db.ExecContext(ctx, insertService,
		sv.ID, sv.Name, sv.Category, sv.Description, sv.Duration, sv.Price, sv.ImageURL); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, sv.ID)
	if err != nil {
		return err
	}
	*sv = *stored
	return nil
}

// CreateMany inserts all services in one transaction and returns how many
// rows were written.
func (r *ServiceRepo) CreateMany(ctx context.Context, svs []model.Service) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	n := 0
	for i := range svs {
		sv := &svs[i]
		if sv.ID == "" {
			sv.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, insertService,
			sv.ID, sv.Name, sv.Category, sv.Description, sv.Duration, sv.Price, sv.ImageURL); err != nil {
			return 0, err
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return n, nil
}

// Update writes every editable column of sv.  It returns ErrServiceNotFound
// if the row does not exist.
func (r *ServiceRepo) Update(ctx context.Context, sv *model.Service) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET name = ?, category = ?, description = ?, duration = ?, price = ?, image_url = ? WHERE id = ?`,
		sv.Name, sv.Category, sv.Description, sv.Duration, sv.Price, sv.ImageURL, sv.ID)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows when nothing changed, so confirm existence.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, sv.ID); err != nil {
			return err
		}
	}
	stored, err := r.GetByID(ctx, sv.ID)
	if err != nil {
		return err
	}
	*sv = *stored
	return nil
}

// Delete removes a service.  Existing bookings keep the service name they
// were made with.
func (r *ServiceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrServiceNotFound
	}
	return nil
}
