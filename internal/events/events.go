package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Lifecycle event types, also used as routing keys
const (
	InterviewStarted    = "interview.started"
	InterviewCompleted  = "interview.completed"
	InterviewTerminated = "interview.terminated"
)

// Event is a lifecycle notification for downstream collaborators
type Event struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	InterviewID uuid.UUID `json:"interviewId"`
	JobID       uuid.UUID `json:"jobId"`
	CandidateID uuid.UUID `json:"candidateId"`
	Reason      string    `json:"reason,omitempty"`
	Score       *float64  `json:"overallScore,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher sends lifecycle events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// RabbitMQPublisher publishes events to a topic exchange
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	timeout  time.Duration

	mu sync.Mutex
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the exchange
func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // args
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	slog.Info("Connected to RabbitMQ", "exchange", exchange)

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		timeout:  5 * time.Second,
	}, nil
}

// Publish sends the event with its type as routing key
func (p *RabbitMQPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		slog.Warn("Failed to close RabbitMQ channel", "error", err)
	}
	return p.conn.Close()
}

// NewMessage encodes an event as a persistent JSON message
func NewMessage(event Event) (amqp.Publishing, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}, nil
}
