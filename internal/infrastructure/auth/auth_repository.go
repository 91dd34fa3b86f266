// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package auth provides JWT-based authentication infrastructure for the
// content share service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// ShareClaims contains the custom claims we parse from the JWT token
type ShareClaims struct {
	Email string `json:"email,omitempty"`
}

// Validate satisfies validator.CustomClaims; email is optional so there is
// nothing to enforce beyond the registered claims
func (c *ShareClaims) Validate(_ context.Context) error {
	return nil
}

// AuthRepository implements the domain AuthRepository interface
type AuthRepository struct {
	validator *validator.Validator
	issuer    string
	audience  string
	logger    *slog.Logger
}

// NewAuthRepository creates a new JWT auth repository backed by a caching
// JWKS provider
func NewAuthRepository(issuer, audience, jwksURL string, clockSkew time.Duration, logger *slog.Logger) (*AuthRepository, error) {
	authLogger := logging.WithComponent(logger, constants.ComponentAuth)

	issuerURL, err := url.Parse(issuer)
	if err != nil {
		authLogger.Error("Failed to parse issuer URL", "issuer", issuer, "error", err.Error())
		return nil, fmt.Errorf("invalid issuer URL: %w", err)
	}

	jwksURLParsed, err := url.Parse(jwksURL)
	if err != nil {
		authLogger.Error("Failed to parse JWKS URL", "jwks_url", jwksURL, "error", err.Error())
		return nil, fmt.Errorf("invalid JWKS URL: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute, jwks.WithCustomJWKSURI(jwksURLParsed))

	customClaims := func() validator.CustomClaims {
		return &ShareClaims{}
	}

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuer,
		[]string{audience},
		validator.WithCustomClaims(customClaims),
		validator.WithAllowedClockSkew(clockSkew),
	)
	if err != nil {
		authLogger.Error("Failed to create JWT validator", "error", err.Error())
		return nil, fmt.Errorf("failed to create JWT validator: %w", err)
	}

	authLogger.Info("Auth repository initialized", "issuer", issuer, "audience", audience)

	return &AuthRepository{
		validator: jwtValidator,
		issuer:    issuer,
		audience:  audience,
		logger:    authLogger,
	}, nil
}

// ValidateToken validates a JWT bearer token and extracts the calling principal
func (r *AuthRepository) ValidateToken(ctx context.Context, token string) (*contracts.Principal, error) {
	logger := logging.FromContext(ctx, r.logger)

	// Trim any leading, case-insensitive "bearer " prefix
	if len(token) > 7 && strings.ToLower(token[:7]) == constants.BearerPrefix {
		token = token[7:]
	}

	if token == "" {
		logger.Warn("Empty token after bearer prefix removal")
		return nil, errors.New(constants.ErrMissingToken)
	}

	validatedClaims, err := r.validator.ValidateToken(ctx, token)
	if err != nil {
		logger.Warn("Token validation failed", "error", err.Error())
		return nil, fmt.Errorf("%s: %w", constants.ErrInvalidToken, err)
	}

	principal, err := r.extractPrincipal(validatedClaims)
	if err != nil {
		logger.Error("Failed to extract principal from validated claims", "error", err.Error())
		return nil, err
	}

	logger.Debug("Token validation completed", "subject", principal.Subject, "has_email", principal.Email != "")
	return principal, nil
}

// HealthCheck checks the health of the auth repository
func (r *AuthRepository) HealthCheck(ctx context.Context) error {
	if r.validator == nil {
		r.logger.ErrorContext(ctx, "Auth repository health check failed: validator not initialized")
		return errors.New(constants.ErrJWTValidatorNotInit)
	}
	return nil
}

func (r *AuthRepository) extractPrincipal(claims interface{}) (*contracts.Principal, error) {
	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", claims)
	}

	subject := validatedClaims.RegisteredClaims.Subject
	if subject == "" {
		return nil, errors.New(constants.ErrSubjectMissing)
	}

	principal := &contracts.Principal{Subject: subject}
	if customClaims, ok := validatedClaims.CustomClaims.(*ShareClaims); ok {
		principal.Email = customClaims.Email
	}
	return principal, nil
}
