package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel carrying booking changes.
const Channel = "bookings:changes"

// Redis publishes events on Channel so that every server instance, and
// therefore every connected dashboard, sees every change.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, Channel, payload).Err()
}

func (r *Redis) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ctx, stop := context.WithCancel(ctx)
	pubsub := r.client.Subscribe(ctx, Channel)
	out := make(chan Event, subscriberBuffer)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			_ = pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.logger.Warn("realtime: bad payload", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return out, cancel
}
