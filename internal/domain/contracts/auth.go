// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package contracts

import (
	"context"
	"fmt"
)

// Principal is the authenticated identity extracted from a validated token.
type Principal struct {
	// Subject is the stable user identifier; it doubles as the share
	// record's owner scope.
	Subject string
	Email   string
}

// String returns a formatted string representation of the principal
func (p Principal) String() string {
	if p.Email != "" {
		return fmt.Sprintf("%s <%s>", p.Subject, p.Email)
	}
	return p.Subject
}

// AuthRepository defines the contract for token validation.
type AuthRepository interface {
	// ValidateToken validates a bearer token and returns principal information
	ValidateToken(ctx context.Context, token string) (*Principal, error)

	// HealthCheck verifies the validator is usable
	HealthCheck(ctx context.Context) error
}
