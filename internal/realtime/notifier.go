// Package realtime carries booking change notifications to the admin
// dashboard.  Every insert or status change publishes an Event; the
// dashboard stream re-reads the bookings on each one.
package realtime

import (
	"context"
	"sync"
	"time"
)

// Event types.
const (
	EventCreated = "created"
	EventUpdated = "updated"
)

// Event reports that a booking changed.
type Event struct {
	Type      string    `json:"type"`
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

// Notifier publishes and subscribes to booking changes.  The cancel func
// returned by Subscribe releases the subscription and closes the channel.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context) (<-chan Event, func())
}

// subscriberBuffer bounds each subscriber's backlog.  A subscriber that falls
// behind loses events, which is harmless because every event triggers a full
// re-read.
const subscriberBuffer = 16

// Local fans events out to subscribers of the same process.
type Local struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewLocal() *Local { return &Local{subs: map[chan Event]struct{}{}} }

func (l *Local) Publish(ctx context.Context, ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, ch)
			l.mu.Unlock()
			close(ch)
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (l *Local) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}
