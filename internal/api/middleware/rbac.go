package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

// RequireRoles enforces role-based access over the identity resolved by
// Authenticate. The check is OR-semantics: holding any one of the required
// roles suffices. An identity with no roles is always denied, never
// default-allowed.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := Identity(c)
			if err != nil {
				return err
			}
			if !user.HasAnyRole(roles...) {
				return domain.ErrAccessDenied
			}
			return next(c)
		}
	}
}

// RequireFresh gates especially sensitive operations on an access token
// obtained by direct login; tokens minted via refresh are rejected.
func RequireFresh(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := c.Get(ContextBearerToken).(string)
			if !ok || raw == "" {
				return domain.ErrTokenMissing
			}
			if !auth.TokenFresh(raw) {
				return domain.ErrTokenNotFresh
			}
			return next(c)
		}
	}
}
