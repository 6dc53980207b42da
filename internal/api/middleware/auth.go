package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spaceyatech/identity-api/internal/api/metrics"
	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

// Echo context keys set by Authenticate.
const (
	// ContextIdentity holds the resolved *domain.User.
	ContextIdentity = "identity"
	// ContextBearerToken holds the raw bearer token string.
	ContextBearerToken = "bearer_token"
)

// Authenticate validates the bearer token through the auth service
// (signature, expiry, revocation ledger), resolves the identity and injects
// it into the request context. Downstream handlers trust only this resolved
// identity, never identity claims from the request body.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := BearerToken(c)
			if err != nil {
				metrics.TokenValidationTotal.WithLabelValues("missing").Inc()
				return err
			}

			user, err := auth.ResolveIdentity(c.Request().Context(), raw)
			if err != nil {
				metrics.TokenValidationTotal.WithLabelValues(validationResult(err)).Inc()
				return err
			}
			metrics.TokenValidationTotal.WithLabelValues("ok").Inc()

			c.Set(ContextIdentity, user)
			c.Set(ContextBearerToken, raw)
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", domain.ErrTokenMissing
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrTokenMalformed
	}
	return parts[1], nil
}

// Identity returns the user resolved by Authenticate.
func Identity(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(ContextIdentity).(*domain.User)
	if !ok || user == nil {
		return nil, domain.ErrTokenMissing
	}
	return user, nil
}

func validationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_subject"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	default:
		// Wrapped storage failures are infrastructure trouble, not bad
		// tokens.
		return "error"
	}
}
