// Package service provides the outbound side of the booking event queue.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/salon-booking/internal/config"
    q "github.com/iliyamo/salon-booking/internal/queue"
)

// BookingPublisher publishes BookingConfirmedEvent messages.  Each call dials
// its own connection; booking volume is a handful per hour.
type BookingPublisher struct {
    cfg    config.RabbitConfig
    logger *zap.Logger
}

func NewBookingPublisher(cfg config.RabbitConfig, logger *zap.Logger) *BookingPublisher {
    return &BookingPublisher{cfg: cfg, logger: logger}
}

// PublishBookingConfirmed sends event to the configured queue as a persistent
// message.  It is a no-op when the broker is disabled.
func (p *BookingPublisher) PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error {
    if p == nil || !p.cfg.Enabled {
        return nil
    }
    conn, err := amqp.Dial(p.cfg.URL)
    if err != nil {
        p.logger.Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.logger.Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        p.cfg.Queue, // name
        true,        // durable
        false,       // autoDelete
        false,       // exclusive
        false,       // noWait
        nil,         // args
    ); err != nil {
        p.logger.Warn("rabbitmq: queue declare failed", zap.Error(err))
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        MessageId:    event.BookingID,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, pub); err != nil {
        p.logger.Warn("rabbitmq: publish failed", zap.String("booking_id", event.BookingID), zap.Error(err))
        return err
    }
    return nil
}
