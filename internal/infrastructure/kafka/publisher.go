// Package kafka publishes relayed outbox events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const (
	peerKafka      = "kafka"
	headerEvent    = "event"
	headerEventID  = "event_id"
	DefaultTopic   = "minishop.orders"
	defaultTimeout = 10 * time.Second
)

// Publisher sends each event synchronously so the relay only marks records
// sent after the broker acknowledged them.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string

	log      observability.Logger
	requests observability.Counter
	duration observability.Histogram
}

// NewConfig returns the producer settings used by NewPublisher.
func NewConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Timeout = defaultTimeout
	return cfg
}

func NewPublisher(brokers []string, topic string, tel observability.Observability) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: start producer: %w", err)
	}
	return NewPublisherWithProducer(producer, topic, tel), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, tel observability.Observability) *Publisher {
	if tel == nil {
		tel = observability.Nop()
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		log:      tel.Logger().With(observability.F("component", "kafka_publisher"), observability.F("topic", topic)),
		requests: tel.Metrics().Counter(observability.MExternalRequests),
		duration: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

func (p *Publisher) Publish(ctx context.Context, e domoutbox.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := p.message(e)
	if err != nil {
		return err
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(msg)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.requests.Add(1,
		observability.L("peer", peerKafka),
		observability.L("endpoint", p.topic),
		observability.L("outcome", outcome),
	)
	p.duration.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerKafka),
		observability.L("endpoint", p.topic),
	)

	logger := logctx.FromOr(ctx, p.log).With(observability.F("event", e.EventName()))
	if err != nil {
		logger.Warn("kafka_publish_failed", observability.F("error", err))
		return fmt.Errorf("kafka: publish %s: %w", e.EventName(), err)
	}
	logger.Debug("kafka_published",
		observability.F("partition", partition),
		observability.F("offset", offset),
	)
	return nil
}

func (p *Publisher) message(e domoutbox.Event) (*sarama.ProducerMessage, error) {
	msg, ok := e.(domoutbox.Message)
	if !ok {
		rec, err := domoutbox.NewRecord(e)
		if err != nil {
			return nil, err
		}
		msg = domoutbox.Message{Record: rec}
	}

	pm := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(msg.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerEvent), Value: []byte(msg.Name)},
			{Key: []byte(headerEventID), Value: []byte(msg.EventID)},
		},
		Timestamp: msg.CreatedAt,
	}
	if msg.Key != "" {
		pm.Key = sarama.StringEncoder(msg.Key)
	}
	return pm, nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
