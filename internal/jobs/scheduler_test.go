package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeCounter struct {
	counts map[string]int
	err    error
	calls  int
}

func (f *fakeCounter) CountByStatus(ctx context.Context) (map[string]int, error) {
	f.calls++
	return f.counts, f.err
}

func TestRefreshBookingGauges(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := &fakeCounter{counts: map[string]int{"confirmed": 3}}
		RefreshBookingGauges(f, zap.NewNop())()
		if f.calls != 1 {
			t.Fatalf("calls = %d", f.calls)
		}
	})
	t.Run("error is swallowed", func(t *testing.T) {
		f := &fakeCounter{err: errors.New("db down")}
		RefreshBookingGauges(f, zap.NewNop())()
		if f.calls != 1 {
			t.Fatalf("calls = %d", f.calls)
		}
	})
}

func TestSchedulerRegister(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	if err := Register(s, &fakeCounter{}, zap.NewNop()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Add("not a spec", "bad", func() {}); err == nil {
		t.Fatal("expected error for invalid spec")
	}
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
