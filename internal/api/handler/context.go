package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/spaceyatech/identity-api/internal/api/middleware"
	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// ctxIdentity returns the user resolved by the Authenticate middleware.
// Its presence proves the middleware ran; handlers never fall back to
// request-body identity claims.
func ctxIdentity(c echo.Context) (*domain.User, error) {
	return middleware.Identity(c)
}

// ctxBearer returns the raw bearer token the middleware validated, for
// operations that act on the token itself (logout, freshness display).
func ctxBearer(c echo.Context) (string, error) {
	raw, _ := c.Get(middleware.ContextBearerToken).(string)
	if raw == "" {
		return "", domain.ErrTokenMissing
	}
	return raw, nil
}
