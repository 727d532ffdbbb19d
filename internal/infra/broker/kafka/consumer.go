package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer feeds one consumer group into a MessageHandler.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
	// Attempts per message before it is logged and skipped.
	Attempts int
	Backoff  time.Duration
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Consumer{group: g, handler: handler, logger: logger, Attempts: 3, Backoff: time.Second}, nil
}

const maxRejoinBackoff = 30 * time.Second

// Run consumes topics until ctx is cancelled, rejoining after each rebalance.
// A failed session is retried with doubling backoff; only a closed group or
// ctx ends the loop.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.WarnContext(ctx, "consumer group error", "error", err)
		}
	}()
	h := claimHandler{handler: c.handler, logger: c.logger, attempts: c.Attempts, backoff: c.Backoff}
	wait := max(c.Backoff, time.Millisecond)
	for {
		err := c.group.Consume(ctx, topics, h)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			wait = max(c.Backoff, time.Millisecond)
			continue
		}
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return err
		}
		c.logger.WarnContext(ctx, "consumer session failed, rejoining", "topics", topics, "retry_in", wait, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, maxRejoinBackoff)
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type claimHandler struct {
	handler  MessageHandler
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

func (h claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim retries a failing message in place, then marks it anyway so
// one poison message cannot stall the partition.
func (h claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for message := range claim.Messages() {
		if err := h.handle(ctx, message); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.logger.ErrorContext(ctx, "giving up on message",
				"topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

func (h claimHandler) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	attempts := max(h.attempts, 1)
	var err error
	for i := 0; i < attempts; i++ {
		if err = h.handler.Handle(ctx, msg); err == nil {
			return nil
		}
		h.logger.WarnContext(ctx, "message handling failed", "offset", msg.Offset, "attempt", i+1, "error", err)
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(h.backoff * time.Duration(i+1)):
		}
	}
	return err
}
