// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package container wires the service dependencies together.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	natsgo "github.com/nats-io/nats.go"
	opensearchgo "github.com/opensearch-project/opensearch-go/v2"

	"github.com/christopherhouse/web-content-share/internal/domain/services"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/auth"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/blob"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/cleanup"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/config"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/messaging"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/secrets"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/storage"
	"github.com/christopherhouse/web-content-share/internal/presentation/handlers"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// Container holds all dependencies
type Container struct {
	// Configuration
	Config *config.AppConfig

	// Infrastructure
	NATSConnection   *natsgo.Conn
	JetStream        natsgo.JetStreamContext
	OpenSearchClient *opensearchgo.Client

	// Repositories
	ShareRepository      *storage.ShareRepository
	CheckpointRepository *storage.CheckpointRepository
	BlobRepository       *blob.BlobRepository
	MessagingRepository  *messaging.MessagingRepository
	AuthRepository       *auth.AuthRepository

	// Secrets
	KeySource       *secrets.KeySource
	ShareCodeCipher *secrets.ShareCodeCipher

	// Services
	ShareService  *services.ShareService
	HealthService *services.HealthService

	// Cleanup
	CleanupEngine    *cleanup.Engine
	CleanupScheduler *cleanup.Scheduler

	// Handlers
	HealthHandler         *handlers.HealthHandler
	ShareMessageHandler   *handlers.ShareMessageHandler
	CleanupMessageHandler *handlers.CleanupMessageHandler

	logger *slog.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(logger *slog.Logger, flags *config.CLIConfig) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyCLIOverrides(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	container := &Container{
		Config: cfg,
		logger: logging.WithComponent(logger, "container"),
	}

	if err := container.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	if err := container.initializeRepositories(logger); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	container.initializeServices(logger)
	container.initializeHandlers(logger, flags)

	return container, nil
}

// applyCLIOverrides applies command line overrides on top of the environment
// configuration. Precedence: CLI flags > environment > defaults.
func applyCLIOverrides(cfg *config.AppConfig, flags *config.CLIConfig) {
	if flags == nil {
		return
	}
	if flags.Port != "" {
		if port, err := strconv.Atoi(flags.Port); err == nil {
			cfg.Server.Port = port
		}
	}
	if flags.NoCleanup {
		cfg.Cleanup.Enabled = false
	}
	if flags.Debug {
		cfg.Logging.Level = "debug"
	}
}

// initializeInfrastructure initializes infrastructure dependencies
func (c *Container) initializeInfrastructure() error {
	natsConn, err := natsgo.Connect(
		c.Config.NATS.URL,
		natsgo.Name(constants.ServiceName),
		natsgo.MaxReconnects(c.Config.NATS.MaxReconnects),
		natsgo.ReconnectWait(c.Config.NATS.ReconnectWait),
		natsgo.Timeout(c.Config.NATS.ConnectionTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	c.NATSConnection = natsConn

	js, err := natsConn.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	c.JetStream = js

	opensearchClient, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses: []string{c.Config.OpenSearch.URL},
	})
	if err != nil {
		return fmt.Errorf("failed to create OpenSearch client: %w", err)
	}
	c.OpenSearchClient = opensearchClient

	return nil
}

// initializeRepositories initializes the repository layer
func (c *Container) initializeRepositories(logger *slog.Logger) error {
	c.ShareRepository = storage.NewShareRepository(c.OpenSearchClient, c.Config.OpenSearch.SharesIndex, logger)
	c.CheckpointRepository = storage.NewCheckpointRepository(c.OpenSearchClient, c.Config.OpenSearch.CleanupStateIndex, logger)

	blobRepo, err := blob.NewBlobRepository(c.JetStream, c.Config.Blob.Bucket, logger)
	if err != nil {
		return fmt.Errorf("failed to create blob repository: %w", err)
	}
	c.BlobRepository = blobRepo

	c.MessagingRepository = messaging.NewMessagingRepository(c.NATSConnection, logger, c.Config.NATS.DrainTimeout)

	authRepo, err := auth.NewAuthRepository(
		c.Config.JWT.Issuer,
		c.Config.JWT.Audience,
		c.Config.JWT.JWKSURL,
		c.Config.JWT.ClockSkew,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth repository: %w", err)
	}
	c.AuthRepository = authRepo

	c.KeySource = secrets.NewKeySource(c.Config.Share.CodeKey, c.Config.Share.CodeKeyFile, logger)
	c.ShareCodeCipher = secrets.NewShareCodeCipher(c.KeySource, logger)

	return nil
}

// initializeServices initializes the service layer and the cleanup engine
func (c *Container) initializeServices(logger *slog.Logger) {
	c.ShareService = services.NewShareService(
		c.ShareRepository,
		c.BlobRepository,
		c.ShareCodeCipher,
		c.Config.Share.DefaultExpirationHours,
		c.Config.Share.MaxExpirationHours,
		logger,
	)

	c.HealthService = services.NewHealthService(
		c.ShareRepository,
		c.MessagingRepository,
		c.BlobRepository,
		c.AuthRepository,
		constants.HealthCheckTimeout,
		constants.CacheDuration,
	)

	c.CleanupEngine = cleanup.NewEngine(
		c.ShareRepository,
		c.CheckpointRepository,
		c.BlobRepository,
		c.Config.Cleanup.BatchSize,
		logger,
	)
	c.CleanupScheduler = cleanup.NewScheduler(c.CleanupEngine, c.Config.Cleanup.Interval, logger)
}

// initializeHandlers initializes the presentation layer
func (c *Container) initializeHandlers(logger *slog.Logger, flags *config.CLIConfig) {
	simpleHealth := flags != nil && flags.SimpleHealth
	c.HealthHandler = handlers.NewHealthHandler(c.HealthService, simpleHealth)
	c.ShareMessageHandler = handlers.NewShareMessageHandler(c.ShareService, c.AuthRepository, logger)
	c.CleanupMessageHandler = handlers.NewCleanupMessageHandler(c.CleanupEngine, logger)
}

// StartServices sets up NATS subscriptions and starts the cleanup scheduler
func (c *Container) StartServices(ctx context.Context) error {
	c.logger.Info("Starting NATS message processing")

	if err := c.SetupNATSSubscriptions(ctx); err != nil {
		return fmt.Errorf("failed to setup NATS subscriptions: %w", err)
	}

	if c.Config.Cleanup.Enabled {
		c.CleanupScheduler.Start(ctx)
	} else {
		c.logger.Info("Cleanup scheduler disabled")
	}

	c.logger.Info("Background services started")
	return nil
}

// SetupNATSSubscriptions subscribes the message handlers on the shared queue
// group so replicas load-balance requests.
func (c *Container) SetupNATSSubscriptions(ctx context.Context) error {
	queue := c.Config.NATS.Queue

	shareSubjects := []string{
		constants.ShareCreateSubject,
		constants.ShareClaimSubject,
		constants.ShareListSubject,
		constants.ShareDeleteSubject,
	}
	for _, subject := range shareSubjects {
		if err := c.MessagingRepository.QueueSubscribeWithReply(ctx, subject, queue, c.ShareMessageHandler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}

	if err := c.MessagingRepository.QueueSubscribeWithReply(ctx, constants.CleanupRunSubject, queue, c.CleanupMessageHandler); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", constants.CleanupRunSubject, err)
	}

	c.logger.Info("NATS queue subscriptions ready",
		"queue", queue,
		"subjects", len(shareSubjects)+1)
	return nil
}

// HealthCheck performs health checks on all dependencies
func (c *Container) HealthCheck(ctx context.Context) error {
	if err := c.MessagingRepository.HealthCheck(ctx); err != nil {
		return fmt.Errorf("NATS health check failed: %w", err)
	}

	if err := c.ShareRepository.HealthCheck(ctx); err != nil {
		return fmt.Errorf("OpenSearch health check failed: %w", err)
	}

	if err := c.BlobRepository.HealthCheck(ctx); err != nil {
		return fmt.Errorf("blob store health check failed: %w", err)
	}

	if err := c.AuthRepository.HealthCheck(ctx); err != nil {
		return fmt.Errorf("auth health check failed: %w", err)
	}

	return nil
}

// Close stops the scheduler and closes all resources
func (c *Container) Close() error {
	c.logger.Info("Closing container resources")

	if c.CleanupScheduler != nil {
		c.CleanupScheduler.Shutdown()
	}

	if c.MessagingRepository != nil {
		if err := c.MessagingRepository.Close(); err != nil {
			c.logger.Error("Error closing messaging repository", "error", err)
		}
	}

	if c.NATSConnection != nil && !c.NATSConnection.IsClosed() {
		c.NATSConnection.Close()
	}

	c.logger.Info("Container resources closed")
	return nil
}
