package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/kavach-app/kavach/internal/domain"
)

// RedisNotifier queues alerts on a Redis list consumed by the SMS/email
// gateway workers. The list survives this process, so alerts queued just
// before a crash are still delivered.
type RedisNotifier struct {
	client   *redis.Client
	queueKey string
	logger   *slog.Logger
}

// NewRedisNotifier connects to Redis and verifies the connection.
// url should be in the format: redis://host:port or redis://:password@host:port
func NewRedisNotifier(url, queueKey string) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger := slog.Default().With("component", "notifier", "backend", "redis")
	logger.Info("connected to Redis", "addr", opts.Addr, "queue", queueKey)

	return &RedisNotifier{
		client:   client,
		queueKey: queueKey,
		logger:   logger,
	}, nil
}

// SendAlert serializes the alert and pushes it onto the queue.
func (n *RedisNotifier) SendAlert(ctx context.Context, contact domain.Contact, location domain.LiveLocation, message string) error {
	alert := newAlert(contact, location, message)
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	if err := n.client.RPush(ctx, n.queueKey, data).Err(); err != nil {
		return fmt.Errorf("queue alert: %w", err)
	}

	n.logger.Debug("alert queued", "contact", contact.Email, "user_id", location.UserID)
	return nil
}

// QueueLength reports pending alerts (useful for monitoring and tests).
func (n *RedisNotifier) QueueLength(ctx context.Context) (int64, error) {
	return n.client.LLen(ctx, n.queueKey).Result()
}

// Close releases the Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
