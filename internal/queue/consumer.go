// Package queue contains the background consumer that listens to the
// booking.confirmed queue, writes one line per booking to logs/booking.log
// and emails the customer when an address is known.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/salon-booking/internal/notify"
)

// Confirmer sends the confirmation email for a booking.
type Confirmer interface {
    SendConfirmation(to string, data notify.BookingConfirmation) error
}

// Consumer drains the booking queue.
type Consumer struct {
    URL    string
    Queue  string
    LogDir string
    Mailer Confirmer
    Logger *zap.Logger
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes until
// ctx is cancelled.  Connection failures are retried with exponential backoff
// capped at 30s; a failing message is rejected without requeue so the loop
// keeps going.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Logger.Warn("booking-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Logger.Warn("booking-consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Logger.Warn("booking-consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := c.Handle(d.Body); err != nil {
            c.Logger.Error("booking-consumer: handle message failed", zap.Error(err))
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// Handle processes one message body.  The log line is mandatory; a failed
// email is logged but does not fail the message.
func (c *Consumer) Handle(body []byte) error {
    var ev BookingConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := c.appendLog(ev); err != nil {
        return err
    }
    if ev.CustomerEmail != "" && c.Mailer != nil {
        err := c.Mailer.SendConfirmation(ev.CustomerEmail, notify.BookingConfirmation{
            BookingID:    ev.BookingID,
            CustomerName: ev.CustomerName,
            Service:      ev.Service,
            Date:         ev.Date,
            Time:         ev.Time,
            TableNumber:  ev.TableNumber,
            PaymentID:    ev.PaymentID,
        })
        if err != nil {
            c.Logger.Warn("booking-consumer: confirmation email failed",
                zap.String("booking_id", ev.BookingID), zap.Error(err))
        }
    }
    return nil
}

// FormatLine renders the single-line log entry of ev.
func FormatLine(ev BookingConfirmedEvent) string {
    user := ev.UserID
    if user == "" {
        user = "guest"
    }
    return fmt.Sprintf("[%s] Booking confirmed | booking_id=%s | user_id=%s | service=%q | date=%s | time=%q | table=%d | customer=%q | payment_id=%s\n",
        ev.ConfirmedAt, ev.BookingID, user, ev.Service, ev.Date, ev.Time, ev.TableNumber, ev.CustomerName, ev.PaymentID)
}

func (c *Consumer) appendLog(ev BookingConfirmedEvent) error {
    dir := c.LogDir
    if dir == "" {
        dir = "logs"
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
