package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/utils"
)

const testSecret = "test-secret"

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = middleware.NewValidator()
	return e
}

// do sends a request through e and returns the recorder.  body may be nil.
func do(t *testing.T, e *echo.Echo, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(testSecret, userID, role, 15)
	if err != nil {
		t.Fatal(err)
	}
	return at.Token
}

func strPtr(s string) *string { return &s }

// ----- services -----

type fakeServices struct {
	mu    sync.Mutex
	items []model.Service
}

func (f *fakeServices) List(ctx context.Context, category string) ([]model.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Service{}
	for _, sv := range f.items {
		if category == "" || sv.Category == category {
			out = append(out, sv)
		}
	}
	return out, nil
}

func (f *fakeServices) find(match func(model.Service) bool) (*model.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sv := range f.items {
		if match(sv) {
			cp := sv
			return &cp, nil
		}
	}
	return nil, repository.ErrServiceNotFound
}

func (f *fakeServices) GetByID(ctx context.Context, id string) (*model.Service, error) {
	return f.find(func(sv model.Service) bool { return sv.ID == id })
}

func (f *fakeServices) GetByName(ctx context.Context, name string) (*model.Service, error) {
	return f.find(func(sv model.Service) bool { return sv.Name == name })
}

func (f *fakeServices) Create(ctx context.Context, sv *model.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}
	f.items = append(f.items, *sv)
	return nil
}

func (f *fakeServices) CreateMany(ctx context.Context, svs []model.Service) (int, error) {
	for i := range svs {
		if err := f.Create(ctx, &svs[i]); err != nil {
			return 0, err
		}
	}
	return len(svs), nil
}

func (f *fakeServices) Update(ctx context.Context, sv *model.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == sv.ID {
			f.items[i] = *sv
			return nil
		}
	}
	return repository.ErrServiceNotFound
}

func (f *fakeServices) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrServiceNotFound
}

// ----- bookings -----

type fakeBookings struct {
	mu    sync.Mutex
	items []model.Booking
	// loseRace makes Create fail with ErrSlotTaken as if a concurrent
	// insert had won.
	loseRace bool
}

func (f *fakeBookings) BookedTables(ctx context.Context, date, slot string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []int{}
	for _, b := range f.items {
		if b.Date == date && b.Time == slot &&
			b.Status != booking.StatusCancelled && b.Status != booking.StatusRejected {
			out = append(out, b.TableNumber)
		}
	}
	return out, nil
}

func (f *fakeBookings) Create(ctx context.Context, b *model.Booking) error {
	if f.loseRace {
		return repository.ErrSlotTaken
	}
	booked, _ := f.BookedTables(ctx, b.Date, b.Time)
	for _, n := range booked {
		if n == b.TableNumber {
			return repository.ErrSlotTaken
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	f.items = append(f.items, *b)
	return nil
}

func (f *fakeBookings) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (f *fakeBookings) List(ctx context.Context, flt repository.BookingFilter) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Booking{}
	for _, b := range f.items {
		if flt.Status != "" && b.Status != flt.Status {
			continue
		}
		if flt.UserID != "" && (b.UserID == nil || *b.UserID != flt.UserID) {
			continue
		}
		if flt.From != "" && b.Date < flt.From {
			continue
		}
		if flt.To != "" && b.Date > flt.To {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if err := booking.CanTransition(f.items[i].Status, status); err != nil {
			return nil, err
		}
		f.items[i].Status = status
		cp := f.items[i]
		return &cp, nil
	}
	return nil, repository.ErrBookingNotFound
}

func (f *fakeBookings) CountByStatus(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, b := range f.items {
		out[b.Status]++
	}
	return out, nil
}

// ----- users, tokens, profiles -----

type fakeUser struct {
	user model.User
	role string
}

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*fakeUser
	profile *fakeProfiles
}

func newFakeUsers(p *fakeProfiles) *fakeUsers {
	return &fakeUsers{byID: map[string]*fakeUser{}, profile: p}
}

func (f *fakeUsers) add(t *testing.T, email, password, role string) string {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatal(err)
	}
	id := uuid.NewString()
	f.mu.Lock()
	f.byID[id] = &fakeUser{user: model.User{ID: id, Email: email, PasswordHash: hash, IsActive: true}, role: role}
	f.mu.Unlock()
	if f.profile != nil {
		f.profile.put(model.Profile{ID: id, Email: strPtr(email)})
	}
	return id
}

func (f *fakeUsers) Create(ctx context.Context, in repository.NewUser, cost int) (string, error) {
	f.mu.Lock()
	for _, u := range f.byID {
		if u.user.Email == in.Email {
			f.mu.Unlock()
			return "", repository.ErrEmailExists
		}
	}
	f.mu.Unlock()
	hash, err := utils.HashPassword(in.Password, 4)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	f.mu.Lock()
	f.byID[id] = &fakeUser{user: model.User{ID: id, Email: in.Email, PasswordHash: hash, IsActive: true}, role: model.RoleUser}
	f.mu.Unlock()
	return id, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.user.Email == email {
			return u.user, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u.user, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) RoleOf(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[userID]; ok {
		return u.role, nil
	}
	return model.RoleUser, nil
}

type fakeToken struct {
	userID  string
	revoked bool
}

type fakeTokens struct {
	mu        sync.Mutex
	byHash    map[string]*fakeToken
	revokeErr error
}

func newFakeTokens() *fakeTokens { return &fakeTokens{byHash: map[string]*fakeToken{}} }

func (f *fakeTokens) StoreRefresh(ctx context.Context, userID string, tokenHash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byHash[tokenHash] = &fakeToken{userID: userID}
	return nil
}

func (f *fakeTokens) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tk, ok := f.byHash[tokenHash]
	if !ok || tk.revoked {
		return "", sql.ErrNoRows
	}
	return tk.userID, nil
}

func (f *fakeTokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeErr != nil {
		return f.revokeErr
	}
	if tk, ok := f.byHash[tokenHash]; ok {
		tk.revoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tk := range f.byHash {
		if tk.userID == userID {
			tk.revoked = true
		}
	}
	return nil
}

func (f *fakeTokens) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tk := range f.byHash {
		if !tk.revoked {
			n++
		}
	}
	return n
}

type fakeProfiles struct {
	mu   sync.Mutex
	byID map[string]model.Profile
}

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{byID: map[string]model.Profile{}} }

func (f *fakeProfiles) put(p model.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[p.ID] = p
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) Update(ctx context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; !ok {
		return repository.ErrProfileNotFound
	}
	f.byID[p.ID] = *p
	return nil
}

// countingCache records invalidations.
type countingCache struct {
	mu sync.Mutex
	n  int
}

func (c *countingCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
