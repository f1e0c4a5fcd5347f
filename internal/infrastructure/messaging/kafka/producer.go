package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/paidup/paidup/internal/config"
	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes envelopes to Kafka.  A disabled producer (no brokers
// configured) drops events silently so single-node deployments run without a
// broker.
type Producer struct {
	writer WriterInterface
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a Producer from configuration.  Returns a disabled
// producer when cfg.Enabled is false.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info("kafka disabled, events will not be published")
		return &Producer{logger: logger}
	}

	acks := kafka.RequireOne
	if cfg.Acks == "all" {
		acks = kafka.RequireAll
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: acks,
		MaxAttempts:  cfg.MaxRetries,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
	}
	return &Producer{writer: writer, logger: logger}
}

// NewProducerWithWriter wires a custom writer; used by tests.
func NewProducerWithWriter(writer WriterInterface, logger logging.Logger) *Producer {
	return &Producer{writer: writer, logger: logger}
}

// Enabled reports whether events will actually be written.
func (p *Producer) Enabled() bool {
	return p.writer != nil && !p.closed.Load()
}

// Publish writes one envelope, keyed by claim ID so per-claim ordering holds.
func (p *Producer) Publish(ctx context.Context, topic string, envelope EventEnvelope) error {
	if !p.Enabled() {
		return nil
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.CodeMessaging, "failed to encode event")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(envelope.ClaimID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(envelope.EventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			logging.String("topic", topic),
			logging.String("event_type", envelope.EventType),
			logging.Err(err))
		return errors.Wrap(err, errors.CodeMessaging, "failed to publish event")
	}

	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_type", envelope.EventType),
		logging.String("claim_id", string(envelope.ClaimID)))
	return nil
}

// PublishDeadlineUpserted emits one deadline upsert event.
func (p *Producer) PublishDeadlineUpserted(ctx context.Context, claimID common.ID, d deadline.Deadline, created bool) error {
	envelope := NewEnvelope("deadline.upserted", claimID, DeadlineUpsertedPayload{Deadline: d, Created: created})
	return p.Publish(ctx, TopicDeadlineUpserted, envelope)
}

// PublishDocumentGenerated emits one content build event.  Section text stays
// off the bus.
func (p *Producer) PublishDocumentGenerated(ctx context.Context, claimID common.ID, doc claim.GeneratedDocument) error {
	envelope := NewEnvelope("document.generated", claimID, DocumentGeneratedPayload{
		DocumentType: doc.DocumentType,
		Fingerprint:  doc.Fingerprint,
		GeneratedAt:  doc.GeneratedAt,
	})
	return p.Publish(ctx, TopicDocumentGenerated, envelope)
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	if p.closed.Swap(true) || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
