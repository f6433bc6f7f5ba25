package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes events on Redis pub/sub channels. The channel name
// is the event name prefixed with the configured namespace, e.g.
// "meetings.meeting.completed".
type RedisNotifier struct {
	client    *redis.Client
	namespace string
	logger    *slog.Logger
}

// NewRedisNotifier connects a notifier to the given Redis address.
func NewRedisNotifier(addr, password string, db int, namespace string, logger *slog.Logger) *RedisNotifier {
	if namespace == "" {
		namespace = "meetings"
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisNotifier{client: client, namespace: namespace, logger: logger}
}

// Ping verifies broker connectivity.
func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// Publish implements Notifier. Marshal failures are reported to the caller;
// broker failures are logged and reported but carry no retry, which keeps the
// at-least-once contract with the caller owning any retry policy.
func (n *RedisNotifier) Publish(ctx context.Context, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}

	channel := n.namespace + "." + event
	if err := n.client.Publish(ctx, channel, body).Err(); err != nil {
		n.logger.ErrorContext(ctx, "failed to publish event", "event", event, "error", err)
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}

	return nil
}
