package realtime

import (
	"context"
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestLocalFanOut(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()
	a, cancelA := l.Subscribe(ctx)
	b, cancelB := l.Subscribe(ctx)
	defer cancelB()

	_ = l.Publish(ctx, Event{Type: EventCreated, BookingID: "b1", Status: "confirmed"})
	if ev := recv(t, a); ev.BookingID != "b1" || ev.Type != EventCreated {
		t.Fatalf("a got %+v", ev)
	}
	if ev := recv(t, b); ev.BookingID != "b1" {
		t.Fatalf("b got %+v", ev)
	}

	cancelA()
	cancelA() // idempotent
	if _, ok := <-a; ok {
		t.Fatal("cancelled channel still open")
	}
	if n := l.Subscribers(); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}
	_ = l.Publish(ctx, Event{Type: EventUpdated, BookingID: "b2"})
	if ev := recv(t, b); ev.BookingID != "b2" {
		t.Fatalf("b got %+v", ev)
	}
}

func TestLocalContextCancel(t *testing.T) {
	l := NewLocal()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := l.Subscribe(ctx)
	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestLocalSlowSubscriberDoesNotBlock(t *testing.T) {
	l := NewLocal()
	_, cancel := l.Subscribe(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			_ = l.Publish(context.Background(), Event{Type: EventUpdated})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}
