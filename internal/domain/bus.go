package domain

import (
	"context"
)

// EventBus carries fire-and-forget events out of the engine: completed
// checks for the audit worker, raised alerts for downstream consumers.
// Implementations: Go channels (single node) or NATS.
type EventBus interface {
	// Publish sends a message to a topic.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers a handler for a topic.
	Subscribe(ctx context.Context, topic string, handler MessageHandler) (Subscription, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message is an event on the bus.
type Message struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Payload   []byte `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats"
	Type string

	// Channel settings
	ChannelBufferSize int

	// NATS settings
	NATSUrl           string
	NATSToken         string
	NATSMaxReconnects int
	NATSReconnectWait int // seconds
}

// Topics published by the engine.
const (
	TopicCheckCompleted = "fraudguard.check.completed"
	TopicAlertRaised    = "fraudguard.alert.raised"
)

// CheckEnvelope is the payload published on TopicCheckCompleted. It carries
// everything the audit worker needs to persist the check.
type CheckEnvelope struct {
	Result *CheckResult `json:"result"`
	Input  *CheckInput  `json:"input"`
}
