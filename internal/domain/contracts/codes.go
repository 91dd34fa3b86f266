// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package contracts

import "context"

// ShareCodeCipher generates recipient share codes and converts them to and
// from their persisted encrypted form.
//
// Encrypt must be deterministic for a given key and plaintext: claims are
// resolved by encrypting the presented code and matching it against the
// stored value.
type ShareCodeCipher interface {
	// GenerateCode produces a new random share code.
	GenerateCode() (string, error)

	// Encrypt returns the persisted form of a plain share code.
	Encrypt(ctx context.Context, code string) (string, error)

	// Decrypt recovers the plain share code from its persisted form.
	Decrypt(ctx context.Context, encrypted string) (string, error)
}
