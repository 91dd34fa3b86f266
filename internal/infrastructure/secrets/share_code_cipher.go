// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	gcmNonceLen  = 12
	nonceInfo    = "share-code:v1:nonce"
	cipherAAD    = "share-code:v1"
)

// ShareCodeCipher encrypts and decrypts recipient share codes with AES-GCM.
//
// The nonce is derived from the plaintext with HMAC-SHA-256 rather than drawn
// at random, making encryption deterministic: the same code under the same
// key always yields the same stored value, so a presented code can be looked
// up by re-encrypting it. Share codes are short-lived random strings, so
// nonce reuse across distinct plaintexts cannot occur.
type ShareCodeCipher struct {
	keys   *KeySource
	logger *slog.Logger
}

// NewShareCodeCipher creates a share code cipher backed by the given key source
func NewShareCodeCipher(keys *KeySource, logger *slog.Logger) *ShareCodeCipher {
	return &ShareCodeCipher{
		keys:   keys,
		logger: logging.WithComponent(logger, "share_code_cipher"),
	}
}

// GenerateCode produces a new random share code of uppercase letters and digits
func (c *ShareCodeCipher) GenerateCode() (string, error) {
	buf := make([]byte, constants.ShareCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share code: %w", err)
	}
	code := make([]byte, constants.ShareCodeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code), nil
}

// Encrypt returns the persisted form of a plain share code
func (c *ShareCodeCipher) Encrypt(ctx context.Context, code string) (string, error) {
	aead, key, err := c.aead()
	if err != nil {
		return "", fmt.Errorf("%s: %w", constants.ErrEncryptShareCode, err)
	}

	nonce := deriveNonce(key, code)
	sealed := aead.Seal(nil, nonce, []byte(code), []byte(cipherAAD))

	out := make([]byte, 0, gcmNonceLen+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)

	logging.FromContext(ctx, c.logger).Debug("Share code encrypted")
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt recovers the plain share code from its persisted form
func (c *ShareCodeCipher) Decrypt(ctx context.Context, encrypted string) (string, error) {
	aead, _, err := c.aead()
	if err != nil {
		return "", fmt.Errorf("%s: %w", constants.ErrDecryptShareCode, err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%s: %w", constants.ErrDecryptShareCode, err)
	}
	if len(raw) < gcmNonceLen {
		return "", fmt.Errorf("%s: ciphertext too short", constants.ErrDecryptShareCode)
	}

	plain, err := aead.Open(nil, raw[:gcmNonceLen], raw[gcmNonceLen:], []byte(cipherAAD))
	if err != nil {
		return "", fmt.Errorf("%s: %w", constants.ErrDecryptShareCode, err)
	}

	logging.FromContext(ctx, c.logger).Debug("Share code decrypted")
	return string(plain), nil
}

func (c *ShareCodeCipher) aead() (cipher.AEAD, []byte, error) {
	key, err := c.keys.Key()
	if err != nil {
		return nil, nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	return aead, key, nil
}

func deriveNonce(key []byte, code string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(nonceInfo))
	mac.Write([]byte(code))
	return mac.Sum(nil)[:gcmNonceLen]
}
