// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package contracts

import (
	"context"
)

// MessageHandler defines the interface for handling messages
type MessageHandler interface {
	Handle(ctx context.Context, data []byte, subject string) error
}

// MessageHandlerWithReply defines the interface for handling messages with reply support
type MessageHandlerWithReply interface {
	HandleWithReply(ctx context.Context, data []byte, subject string, reply func([]byte) error) error
}

// MessagingRepository defines the interface for NATS message operations
type MessagingRepository interface {
	// Subscribe subscribes to NATS messages
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error

	// QueueSubscribe subscribes to NATS messages with queue group for load balancing
	QueueSubscribe(ctx context.Context, subject string, queue string, handler MessageHandler) error

	// QueueSubscribeWithReply subscribes to NATS messages with queue group and reply support
	QueueSubscribeWithReply(ctx context.Context, subject string, queue string, handler MessageHandlerWithReply) error

	// Publish publishes a message to NATS
	Publish(ctx context.Context, subject string, data []byte) error

	// Close closes the NATS connection
	Close() error

	// DrainWithTimeout performs graceful NATS connection drain with timeout
	DrainWithTimeout() error

	// HealthCheck checks the health of the NATS connection
	HealthCheck(ctx context.Context) error
}
