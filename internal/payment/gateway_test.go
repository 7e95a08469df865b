package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDemoGatewayCharge(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	g := &DemoGateway{Now: func() time.Time { return fixed }}

	t.Run("ok", func(t *testing.T) {
		r, err := g.Charge(context.Background(), Charge{Amount: "₹150", Description: "Classic Hair Cut"})
		if err != nil {
			t.Fatalf("charge: %v", err)
		}
		if !strings.HasPrefix(r.Reference, "demo_") || len(r.Reference) != len("demo_")+36 {
			t.Errorf("reference = %q", r.Reference)
		}
		if !r.Demo || r.Amount != "₹150" || !r.PaidAt.Equal(fixed) {
			t.Errorf("unexpected receipt %+v", r)
		}
	})

	t.Run("unique references", func(t *testing.T) {
		a, _ := g.Charge(context.Background(), Charge{Amount: "1", Description: "x"})
		b, _ := g.Charge(context.Background(), Charge{Amount: "1", Description: "x"})
		if a.Reference == b.Reference {
			t.Fatal("references repeat")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, c := range []Charge{{Amount: "", Description: "x"}, {Amount: "1", Description: "  "}} {
			if _, err := g.Charge(context.Background(), c); !errors.Is(err, ErrInvalidCharge) {
				t.Errorf("Charge(%+v) err = %v", c, err)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := g.Charge(ctx, Charge{Amount: "1", Description: "x"}); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	})
}
