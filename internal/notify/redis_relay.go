package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"revision-history-server/internal/config"
	"revision-history-server/internal/domain"
	"revision-history-server/internal/metrics"
	"revision-history-server/internal/service"
	"revision-history-server/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// NewRedisClient returns nil, nil when Redis is not configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

type relayMessage struct {
	UserUUID string                         `json:"user_uuid"`
	Revision *domain.RevisionSimpleResponse `json:"revision"`
}

// Relay fans revision notifications out to every server instance. Publishing
// goes to a Redis channel; Run delivers what arrives to the local
// websocket connections.
type Relay struct {
	client  *redis.Client
	channel string
	local   service.RevisionNotifier
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRelay(client *redis.Client, channel string, local service.RevisionNotifier, log *slog.Logger, m *metrics.Metrics) *Relay {
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	return &Relay{
		client:  client,
		channel: channel,
		local:   local,
		logger:  log,
		metrics: m,
	}
}

func (r *Relay) NotifyRevisionCreated(ctx context.Context, userUUID string, revision *domain.RevisionSimpleResponse) error {
	payload, err := json.Marshal(relayMessage{UserUUID: userUUID, Revision: revision})
	if err != nil {
		return fmt.Errorf("encode relay message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish revision notification: %w", err)
	}

	r.metrics.ObserveRelay("published")
	return nil
}

// Run subscribes to the channel and blocks until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg.Payload)
		}
	}
}

func (r *Relay) deliver(ctx context.Context, payload string) {
	var msg relayMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil || msg.UserUUID == "" || msg.Revision == nil {
		r.logger.WarnContext(ctx, "dropping malformed relay message", "error", err)
		return
	}

	r.metrics.ObserveRelay("received")

	if err := r.local.NotifyRevisionCreated(ctx, msg.UserUUID, msg.Revision); err != nil {
		r.logger.WarnContext(ctx, "local notification failed", "user_uuid", msg.UserUUID, "error", err)
	}
}
