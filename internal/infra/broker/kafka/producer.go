package kafka

import (
	"context"
	"fmt"
	"slices"

	"github.com/IBM/sarama"
)

// Producer writes plan events from the outbox worker to Kafka. Events are
// hash-partitioned by booking id so one booking's plans arrive in order.
type Producer struct {
	sync sarama.SyncProducer
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.ClientID = "concierge"
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Net.MaxOpenRequests = 1
	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: start producer: %w", err)
	}
	return &Producer{sync: sp}, nil
}

func newProducerWith(sp sarama.SyncProducer) *Producer {
	return &Producer{sync: sp}
}

// Publish sends one event keyed by bookingKey and blocks until the brokers ack it.
func (p *Producer) Publish(ctx context.Context, topic string, bookingKey string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(bookingKey),
		Value:   sarama.ByteEncoder(payload),
		Headers: recordHeaders(headers),
	}
	if _, _, err := p.sync.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka: publish to %s (key %q): %w", topic, bookingKey, err)
	}
	return nil
}

// recordHeaders orders headers by name so identical events encode identically.
func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]sarama.RecordHeader, 0, len(names))
	for _, name := range names {
		out = append(out, sarama.RecordHeader{Key: []byte(name), Value: []byte(headers[name])})
	}
	return out
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
