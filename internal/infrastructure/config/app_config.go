// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package config loads and validates the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/env"
)

// AppConfig represents the application configuration
type AppConfig struct {
	Server     ServerConfig     `json:"server"`
	NATS       NATSConfig       `json:"nats"`
	OpenSearch OpenSearchConfig `json:"opensearch"`
	Blob       BlobConfig       `json:"blob"`
	JWT        JWTConfig        `json:"jwt"`
	Share      ShareConfig      `json:"share"`
	Cleanup    CleanupConfig    `json:"cleanup"`
	Logging    LoggingConfig    `json:"logging"`
}

// ServerConfig contains the health/metrics HTTP server configuration
type ServerConfig struct {
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// NATSConfig contains NATS configuration
type NATSConfig struct {
	URL               string        `json:"url"`
	MaxReconnects     int           `json:"max_reconnects"`
	ReconnectWait     time.Duration `json:"reconnect_wait"`
	ConnectionTimeout time.Duration `json:"connection_timeout"`
	DrainTimeout      time.Duration `json:"drain_timeout"`
	Queue             string        `json:"queue"`
}

// OpenSearchConfig contains OpenSearch configuration
type OpenSearchConfig struct {
	URL               string `json:"url"`
	SharesIndex       string `json:"shares_index"`
	CleanupStateIndex string `json:"cleanup_state_index"`
}

// BlobConfig contains the object store configuration
type BlobConfig struct {
	Bucket string `json:"bucket"`
}

// JWTConfig contains JWT validation configuration
type JWTConfig struct {
	Issuer    string        `json:"issuer"`
	Audience  string        `json:"audience"`
	JWKSURL   string        `json:"jwks_url"`
	ClockSkew time.Duration `json:"clock_skew"`
}

// ShareConfig contains share lifecycle configuration
type ShareConfig struct {
	// CodeKey is the base64 AES key encrypting share codes. CodeKeyFile
	// takes precedence when set (mounted secret).
	CodeKey     string `json:"-"`
	CodeKeyFile string `json:"code_key_file"`

	DefaultExpirationHours int `json:"default_expiration_hours"`
	MaxExpirationHours     int `json:"max_expiration_hours"`
}

// CleanupConfig contains the expired-share cleanup configuration
type CleanupConfig struct {
	Enabled   bool          `json:"enabled"`
	Interval  time.Duration `json:"interval"`
	BatchSize int           `json:"batch_size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{
		Server: ServerConfig{
			Port:            env.GetInt("PORT", constants.DefaultPort),
			ReadTimeout:     env.GetDuration("READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    env.GetDuration("WRITE_TIMEOUT", 5*time.Second),
			ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		NATS: NATSConfig{
			URL:               env.GetString("NATS_URL", "nats://nats:4222"),
			MaxReconnects:     env.GetInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:     env.GetDuration("NATS_RECONNECT_WAIT", 2*time.Second),
			ConnectionTimeout: env.GetDuration("NATS_CONNECTION_TIMEOUT", 10*time.Second),
			DrainTimeout:      env.GetDuration("NATS_DRAIN_TIMEOUT", 15*time.Second),
			Queue:             env.GetString("NATS_QUEUE", constants.ShareQueue),
		},
		OpenSearch: OpenSearchConfig{
			URL:               env.GetString("OPENSEARCH_URL", "http://localhost:9200"),
			SharesIndex:       env.GetString("SHARES_INDEX", constants.DefaultSharesIndex),
			CleanupStateIndex: env.GetString("CLEANUP_STATE_INDEX", constants.DefaultCleanupStateIndex),
		},
		Blob: BlobConfig{
			Bucket: env.GetString("SHARE_BUCKET", constants.DefaultShareBucket),
		},
		JWT: JWTConfig{
			Issuer:    env.GetString("JWT_ISSUER", "https://auth.local/"),
			Audience:  env.GetString("JWT_AUDIENCE", "content-share-api"),
			JWKSURL:   env.GetString("JWKS_URL", ""),
			ClockSkew: env.GetDuration("JWT_CLOCK_SKEW", time.Minute),
		},
		Share: ShareConfig{
			CodeKey:                env.GetString("SHARE_CODE_KEY", ""),
			CodeKeyFile:            env.GetString("SHARE_CODE_KEY_FILE", ""),
			DefaultExpirationHours: env.GetInt("DEFAULT_EXPIRATION_HOURS", constants.DefaultExpirationHours),
			MaxExpirationHours:     env.GetInt("MAX_EXPIRATION_HOURS", 7*24),
		},
		Cleanup: CleanupConfig{
			Enabled:   env.GetBool("CLEANUP_ENABLED", true),
			Interval:  env.GetDuration("CLEANUP_INTERVAL", constants.DefaultCleanupInterval),
			BatchSize: env.GetInt("CLEANUP_BATCH_SIZE", constants.DefaultCleanupBatchSize),
		},
		Logging: LoggingConfig{
			Level:  env.GetString("LOG_LEVEL", constants.DefaultLogLevel),
			Format: env.GetString("LOG_FORMAT", constants.DefaultLogFormat),
		},
	}

	return config, nil
}

// Validate validates the configuration
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.NATS.URL == "" {
		return fmt.Errorf("NATS URL is required")
	}

	if c.OpenSearch.URL == "" {
		return fmt.Errorf("OpenSearch URL is required")
	}

	if c.OpenSearch.SharesIndex == "" {
		return fmt.Errorf("shares index is required")
	}

	if c.OpenSearch.CleanupStateIndex == "" {
		return fmt.Errorf("cleanup state index is required")
	}

	if c.Blob.Bucket == "" {
		return fmt.Errorf("share bucket is required")
	}

	if c.Share.CodeKey == "" && c.Share.CodeKeyFile == "" {
		return fmt.Errorf("share code key is required (SHARE_CODE_KEY or SHARE_CODE_KEY_FILE)")
	}

	if c.Share.DefaultExpirationHours <= 0 {
		return fmt.Errorf("invalid default expiration hours: %d", c.Share.DefaultExpirationHours)
	}

	if c.Share.MaxExpirationHours < c.Share.DefaultExpirationHours {
		return fmt.Errorf("max expiration hours (%d) below default (%d)",
			c.Share.MaxExpirationHours, c.Share.DefaultExpirationHours)
	}

	if c.Cleanup.Interval <= 0 {
		return fmt.Errorf("invalid cleanup interval: %s", c.Cleanup.Interval)
	}

	if c.Cleanup.BatchSize <= 0 {
		return fmt.Errorf("invalid cleanup batch size: %d", c.Cleanup.BatchSize)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
