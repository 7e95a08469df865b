package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/salon-booking/internal/model"
    "github.com/iliyamo/salon-booking/internal/queue"
    "github.com/iliyamo/salon-booking/internal/repository"
)

// dbTimeout bounds every repository call made by a handler.
const dbTimeout = 5 * time.Second

// UserStore is the part of repository.UserRepo the handlers use.
type UserStore interface {
    Create(ctx context.Context, in repository.NewUser, cost int) (string, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id string) (model.User, error)
    RoleOf(ctx context.Context, userID string) (string, error)
}

// TokenStore is implemented by repository.TokenRepo.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID string, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID string) error
}

// ServiceStore is implemented by repository.ServiceRepo.
type ServiceStore interface {
    List(ctx context.Context, category string) ([]model.Service, error)
    GetByID(ctx context.Context, id string) (*model.Service, error)
    GetByName(ctx context.Context, name string) (*model.Service, error)
    Create(ctx context.Context, sv *model.Service) error
    CreateMany(ctx context.Context, svs []model.Service) (int, error)
    Update(ctx context.Context, sv *model.Service) error
    Delete(ctx context.Context, id string) error
}

// BookingStore is implemented by repository.BookingRepo.
type BookingStore interface {
    BookedTables(ctx context.Context, date, slot string) ([]int, error)
    Create(ctx context.Context, b *model.Booking) error
    GetByID(ctx context.Context, id string) (*model.Booking, error)
    List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
    UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error)
    CountByStatus(ctx context.Context) (map[string]int, error)
}

// ProfileStore is implemented by repository.ProfileRepo.
type ProfileStore interface {
    Get(ctx context.Context, userID string) (*model.Profile, error)
    Update(ctx context.Context, p *model.Profile) error
}

// BookingEvents publishes the booking.confirmed message.
type BookingEvents interface {
    PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
}

// CacheInvalidator drops cached catalog responses.
type CacheInvalidator interface {
    Invalidate(ctx context.Context) error
}

// bindValid binds the request body into dst and runs the echo validator.
// It returns a user-facing message on failure.
func bindValid(c echo.Context, dst interface{}) (string, bool) {
    if err := c.Bind(dst); err != nil {
        return "invalid body", false
    }
    if err := c.Validate(dst); err != nil {
        return validationMessage(err), false
    }
    return "", true
}

// validationMessage turns validator errors into "field: rule" pairs.
func validationMessage(err error) string {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return err.Error()
    }
    parts := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        parts = append(parts, fe.Field()+": "+fe.Tag())
    }
    return "invalid fields: " + strings.Join(parts, ", ")
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func serverError(c echo.Context, msg string) error {
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// trimPtr trims *s and returns nil for blank values.
func trimPtr(s *string) *string {
    if s == nil {
        return nil
    }
    v := strings.TrimSpace(*s)
    if v == "" {
        return nil
    }
    return &v
}
