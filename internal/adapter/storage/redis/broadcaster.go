package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/karystudio/podpool/internal/core/port"
	redigo "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type broadcaster struct {
	client redigo.UniversalClient
	log    *zap.Logger
}

// NewBroadcaster creates a Redis pub/sub event broadcaster. Delivery is
// fire-and-forget; subscribers that aren't listening miss the event.
func NewBroadcaster(client redigo.UniversalClient, log *zap.Logger) port.EventBroadcaster {
	return &broadcaster{
		client: client,
		log:    log,
	}
}

// envelope is the wire shape shared by all broadcast drivers
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func (b *broadcaster) Publish(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		return err
	}

	if err := b.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}

	b.log.Debug("Published event", zap.String("channel", channel), zap.String("event", event))
	return nil
}
