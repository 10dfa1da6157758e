package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"revision-history-server/internal/config"
	"revision-history-server/internal/domain"
	"revision-history-server/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/twmb/franz-go/pkg/kgo"
)

var ErrUnknownEventType = errors.New("unknown event type")

// Processor applies decoded item events.
type Processor interface {
	HandleItemChanged(ctx context.Context, event domain.ItemChangedEvent) error
	HandleItemDuplicated(ctx context.Context, event domain.ItemDuplicatedEvent) error
}

// Envelope is the record value published by the item pipeline.
type Envelope struct {
	EventType domain.ItemEventType `json:"event_type"`
	Payload   json.RawMessage      `json:"payload"`
}

type fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitUncommittedOffsets(ctx context.Context) error
	Close()
}

// Consumer reads item events from Kafka and hands them to the processor.
// Every polled batch is committed, including records that failed.
type Consumer struct {
	client    fetcher
	processor Processor
	validator *validator.Validate
	logger    *slog.Logger
}

func NewConsumer(cfg config.KafkaConfig, processor Processor, log *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.ItemEventTopic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return newConsumer(client, processor, log), nil
}

func newConsumer(client fetcher, processor Processor, log *slog.Logger) *Consumer {
	if log == nil {
		log = logger.Discard()
	}

	return &Consumer{
		client:    client,
		processor: processor,
		validator: validator.New(),
		logger:    log,
	}
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	for {
		fetches := c.client.PollFetches(ctx)
		if ctx.Err() != nil || fetches.IsClientClosed() {
			return nil
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("kafka fetch failed", "topic", topic, "partition", partition, "error", err)
		})

		fetches.EachRecord(func(record *kgo.Record) {
			if err := c.HandleRecord(ctx, record); err != nil {
				c.logger.Error("item event not applied",
					"topic", record.Topic,
					"partition", record.Partition,
					"offset", record.Offset,
					"error", err,
				)
			}
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("kafka commit failed", "error", err)
		}
	}
}

func (c *Consumer) HandleRecord(ctx context.Context, record *kgo.Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}

	var envelope Envelope
	if err := json.Unmarshal(record.Value, &envelope); err != nil {
		return fmt.Errorf("decode item event envelope: %w", err)
	}

	switch envelope.EventType {
	case domain.ItemEventChanged:
		var event domain.ItemChangedEvent
		if err := c.decodePayload(envelope.Payload, &event); err != nil {
			return err
		}
		return c.processor.HandleItemChanged(ctx, event)

	case domain.ItemEventDuplicated:
		var event domain.ItemDuplicatedEvent
		if err := c.decodePayload(envelope.Payload, &event); err != nil {
			return err
		}
		return c.processor.HandleItemDuplicated(ctx, event)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, envelope.EventType)
	}
}

func (c *Consumer) decodePayload(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode item event payload: %w", err)
	}
	if err := c.validator.Struct(dst); err != nil {
		return fmt.Errorf("invalid item event payload: %w", err)
	}
	return nil
}
