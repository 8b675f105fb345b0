// Package mail hands email requests to the mailer service through Kafka.
package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"matchwell/backend/internal/dispatch"
	"matchwell/backend/internal/logging"
)

// EventTypeEmailRequested is sent in the event_type header.
const EventTypeEmailRequested = "email.requested"

// EmailRequestedEvent is the message body consumed by the mailer.
type EmailRequestedEvent struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	Template   string         `json:"template"`
	UserID     uint           `json:"user_id"`
	ToEmail    string         `json:"to_email"`
	ToName     string         `json:"to_name,omitempty"`
	InterestID string         `json:"interest_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Publisher wraps a Kafka producer and acts as the email sink.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// ProducerConfig is the producer configuration used by NewPublisher.
func ProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000
	return config
}

// NewPublisher connects a producer to brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logging.Logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka email publisher initialized")

	return NewPublisherWithProducer(producer, topic), nil
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Name() string { return "email" }

func (p *Publisher) Accepts(kind dispatch.Kind) bool { return kind == dispatch.KindEmail }

func (p *Publisher) Handle(ctx context.Context, ev dispatch.Event) error {
	toEmail, _ := ev.Payload["to_email"].(string)
	if toEmail == "" {
		return fmt.Errorf("email event %s for user %d has no recipient address", ev.Topic, ev.TargetID)
	}
	toName, _ := ev.Payload["to_name"].(string)

	data := make(map[string]any, len(ev.Payload))
	for k, v := range ev.Payload {
		if k == "to_email" || k == "to_name" {
			continue
		}
		data[k] = v
	}
	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return p.Publish(ctx, EmailRequestedEvent{
		Template:   ev.Topic,
		UserID:     ev.TargetID,
		ToEmail:    toEmail,
		ToName:     toName,
		InterestID: ev.InterestID,
		Data:       data,
		Timestamp:  ts,
	})
}

// Publish sends event keyed by the recipient so one user's mail stays ordered.
func (p *Publisher) Publish(ctx context.Context, event EmailRequestedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypeEmailRequested

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: sarama.ByteEncoder(eventBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeEmailRequested)},
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		logging.Error(ctx).
			Err(err).
			Str("topic", p.topic).
			Uint("user_id", event.UserID).
			Msg("Failed to publish email event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	logging.Debug(ctx).
		Str("event_id", event.EventID).
		Str("template", event.Template).
		Int32("partition", partition).
		Int64("offset", offset).
		Uint("user_id", event.UserID).
		Msg("Email event published")
	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
