// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package messaging provides NATS-based messaging infrastructure for the content share service.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// MessagingRepository implements the MessagingRepository interface for NATS operations
type MessagingRepository struct {
	conn           *nats.Conn
	logger         *slog.Logger
	subscriptions  []*nats.Subscription
	mu             sync.RWMutex
	drainTimeout   time.Duration
	isShuttingDown bool
}

// NewMessagingRepository creates a new NATS messaging repository
func NewMessagingRepository(conn *nats.Conn, logger *slog.Logger, drainTimeout time.Duration) *MessagingRepository {
	msgLogger := logging.WithComponent(logger, constants.ComponentNATS)

	repo := &MessagingRepository{
		conn:          conn,
		logger:        msgLogger,
		subscriptions: make([]*nats.Subscription, 0),
		drainTimeout:  drainTimeout,
	}

	msgLogger.Info("NATS messaging repository initialized", "drain_timeout", drainTimeout)
	return repo
}

// Subscribe subscribes to NATS messages
func (r *MessagingRepository) Subscribe(ctx context.Context, subject string, handler contracts.MessageHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.InfoContext(ctx, "Creating NATS subscription", "subject", subject)

	natsHandler := func(msg *nats.Msg) {
		// Generate request_id at NATS entry point
		ctx, logger := logging.WithRequestID(context.Background(), r.logger)

		logger.Debug("NATS message received", "subject", msg.Subject, "size", len(msg.Data))

		if err := handler.Handle(ctx, msg.Data, msg.Subject); err != nil {
			logger.Error("Message handler failed", "subject", msg.Subject, "error", err.Error())
		}
	}

	sub, err := r.conn.Subscribe(subject, natsHandler)
	if err != nil {
		r.logger.Error("Failed to subscribe to NATS", "subject", subject, "error", err.Error())
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	r.subscriptions = append(r.subscriptions, sub)

	r.logger.Info("NATS subscription created successfully", "subject", subject)
	return nil
}

// QueueSubscribe subscribes to NATS messages with queue group for load balancing
func (r *MessagingRepository) QueueSubscribe(ctx context.Context, subject string, queue string, handler contracts.MessageHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.InfoContext(ctx, "Creating NATS queue subscription", "subject", subject, "queue", queue)

	natsHandler := func(msg *nats.Msg) {
		ctx, logger := logging.WithRequestID(context.Background(), r.logger)

		logger.Debug("NATS queue message received", "subject", msg.Subject, "queue", queue, "size", len(msg.Data))

		if err := handler.Handle(ctx, msg.Data, msg.Subject); err != nil {
			logger.Error("Queue message handler failed", "queue", queue, "error", err.Error())
		}
	}

	sub, err := r.conn.QueueSubscribe(subject, queue, natsHandler)
	if err != nil {
		r.logger.Error("Failed to queue subscribe to NATS", "subject", subject, "queue", queue, "error", err.Error())
		return fmt.Errorf("failed to queue subscribe to subject %s with queue %s: %w", subject, queue, err)
	}

	r.subscriptions = append(r.subscriptions, sub)

	r.logger.Info("NATS queue subscription created successfully", "subject", subject, "queue", queue)
	return nil
}

// QueueSubscribeWithReply subscribes to NATS messages with queue group and reply support
func (r *MessagingRepository) QueueSubscribeWithReply(ctx context.Context, subject string, queue string, handler contracts.MessageHandlerWithReply) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.InfoContext(ctx, "Creating NATS queue subscription with reply", "subject", subject, "queue", queue)

	natsHandler := func(msg *nats.Msg) {
		ctx, logger := logging.WithRequestID(context.Background(), r.logger)

		logger.Debug("NATS queue message with reply received",
			"subject", msg.Subject, "queue", queue, "has_reply", msg.Reply != "")

		var replyFunc func([]byte) error
		if msg.Reply != "" {
			replyFunc = func(data []byte) error {
				if err := msg.Respond(data); err != nil {
					logger.Error("Failed to send reply", "reply_subject", msg.Reply, "error", err.Error())
					return err
				}
				return nil
			}
		}

		if err := handler.HandleWithReply(ctx, msg.Data, msg.Subject, replyFunc); err != nil {
			logger.Error("Queue message with reply handler failed", "queue", queue, "error", err.Error())
		}
	}

	sub, err := r.conn.QueueSubscribe(subject, queue, natsHandler)
	if err != nil {
		r.logger.Error("Failed to queue subscribe with reply to NATS", "subject", subject, "queue", queue, "error", err.Error())
		return fmt.Errorf("failed to queue subscribe with reply to subject %s with queue %s: %w", subject, queue, err)
	}

	r.subscriptions = append(r.subscriptions, sub)

	r.logger.Info("NATS queue subscription with reply created successfully", "subject", subject, "queue", queue)
	return nil
}

// Publish publishes a message to NATS
func (r *MessagingRepository) Publish(ctx context.Context, subject string, data []byte) error {
	logger := logging.FromContext(ctx, r.logger)

	if !r.IsConnected() {
		r.logger.Error("Cannot publish: NATS connection not available", "subject", subject)
		return fmt.Errorf("NATS connection not available for publishing to subject %s", subject)
	}

	if err := r.conn.Publish(subject, data); err != nil {
		logger.Error("Failed to publish message to NATS", "subject", subject, "error", err.Error())
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	logger.Debug("Message published to NATS", "subject", subject, "size", len(data))
	return nil
}

// IsConnected reports whether the NATS connection is usable
func (r *MessagingRepository) IsConnected() bool {
	return r.conn != nil && r.conn.IsConnected()
}

// DrainWithTimeout performs graceful NATS connection drain with timeout
func (r *MessagingRepository) DrainWithTimeout() error {
	r.mu.Lock()
	r.isShuttingDown = true
	totalSubscriptions := len(r.subscriptions)
	r.mu.Unlock()

	r.logger.Info("Starting NATS graceful drain sequence", "timeout", r.drainTimeout, "subscriptions", totalSubscriptions)

	if r.conn == nil {
		r.logger.Warn("NATS connection is nil, skipping drain")
		return nil
	}

	if r.conn.IsClosed() || r.conn.IsDraining() {
		r.logger.Info("NATS connection already closed or draining")
		return nil
	}

	if err := r.conn.Drain(); err != nil {
		r.logger.Error("Failed to start NATS drain", "error", err.Error())
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}

	// Wait for drain to complete, bounded by the drain timeout
	done := make(chan struct{})
	go func() {
		for !r.conn.IsClosed() {
			time.Sleep(100 * time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-time.After(r.drainTimeout):
		r.logger.Warn("NATS drain timeout reached", "timeout", r.drainTimeout)
	case <-done:
	}

	r.logger.Info("NATS drain completed", "subscriptions_processed", totalSubscriptions)
	return nil
}

// Close closes all subscriptions and the NATS connection
func (r *MessagingRepository) Close() error {
	r.mu.Lock()
	shuttingDown := r.isShuttingDown
	r.mu.Unlock()

	if !shuttingDown {
		if err := r.DrainWithTimeout(); err != nil {
			r.logger.Warn("Graceful drain failed, proceeding with immediate close", "error", err.Error())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.subscriptions {
		if sub == nil || !sub.IsValid() {
			continue
		}
		if err := sub.Unsubscribe(); err != nil {
			r.logger.Error("Failed to unsubscribe", "subject", sub.Subject, "error", err.Error())
		}
	}
	r.subscriptions = nil

	if r.conn != nil && !r.conn.IsClosed() {
		r.conn.Close()
	}

	r.logger.Info("NATS messaging repository closed")
	return nil
}

// HealthCheck checks the health of the NATS connection
func (r *MessagingRepository) HealthCheck(_ context.Context) error {
	if !r.IsConnected() {
		return fmt.Errorf("%s: NATS connection not established", constants.ErrHealthCheck)
	}
	return nil
}
