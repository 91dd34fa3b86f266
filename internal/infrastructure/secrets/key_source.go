// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package secrets provides the share-code key source and cipher for the
// content share service.
package secrets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// KeySource resolves the AES key used to encrypt share codes. The key is
// loaded once and cached for the lifetime of the process; rotating the key
// requires a restart because stored codes must keep matching.
type KeySource struct {
	keyValue string
	keyFile  string
	logger   *slog.Logger

	once sync.Once
	key  []byte
	err  error
}

// NewKeySource creates a key source. keyFile takes precedence over keyValue
// when both are set.
func NewKeySource(keyValue, keyFile string, logger *slog.Logger) *KeySource {
	return &KeySource{
		keyValue: keyValue,
		keyFile:  keyFile,
		logger:   logging.WithComponent(logger, "key_source"),
	}
}

// Key returns the decoded AES key, loading it on first use
func (s *KeySource) Key() ([]byte, error) {
	s.once.Do(func() {
		s.key, s.err = s.load()
		if s.err == nil {
			s.logger.Info("Share code key loaded", "key_bytes", len(s.key), "from_file", s.keyFile != "")
		}
	})
	return s.key, s.err
}

func (s *KeySource) load() ([]byte, error) {
	encoded := s.keyValue
	if s.keyFile != "" {
		data, err := os.ReadFile(s.keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file %s: %w", s.keyFile, err)
		}
		encoded = strings.TrimSpace(string(data))
	}

	if encoded == "" {
		return nil, errors.New("share code key not configured")
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode share code key: %w", err)
	}

	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("share code key must be 16, 24 or 32 bytes, got %d", len(key))
	}
}
