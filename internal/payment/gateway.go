// Package payment abstracts the checkout payment step.  Only a demo gateway
// exists: it records no transaction and always succeeds for a valid charge.
package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCharge is returned for a charge without amount or description.
var ErrInvalidCharge = errors.New("invalid charge")

// Charge is what the customer pays for.  Amount is the display price of the
// service, e.g. "₹150".
type Charge struct {
	Amount      string
	Description string
	Customer    string
}

// Receipt identifies a completed charge.
type Receipt struct {
	Reference string    `json:"reference"`
	Amount    string    `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	Demo      bool      `json:"demo"`
}

// Gateway charges a customer.
type Gateway interface {
	Charge(ctx context.Context, c Charge) (Receipt, error)
}

// DemoGateway simulates a successful payment.
type DemoGateway struct {
	Now func() time.Time
}

func NewDemoGateway() *DemoGateway { return &DemoGateway{Now: time.Now} }

// Charge returns a receipt with reference "demo_<uuid>".
func (g *DemoGateway) Charge(ctx context.Context, c Charge) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if strings.TrimSpace(c.Amount) == "" || strings.TrimSpace(c.Description) == "" {
		return Receipt{}, ErrInvalidCharge
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return Receipt{
		Reference: "demo_" + uuid.NewString(),
		Amount:    c.Amount,
		PaidAt:    now().UTC(),
		Demo:      true,
	}, nil
}
