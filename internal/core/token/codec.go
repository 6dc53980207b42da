// Package token implements the stateless signed-token codec used for
// out-of-band flows: email confirmation and password reset links. Tokens are
// compact HS256 JWTs carrying a single payload claim plus issued-at and
// expiry; verification needs no server-side lookup.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// Codec issues and verifies signed tokens under a shared secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue signs payload into a token valid for ttl. The signature covers the
// payload and both timestamps, so any mutation invalidates the token.
func (c *Codec) Issue(payload string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"data": payload,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify validates signature and expiry and returns the embedded payload.
// Errors are domain.ErrTokenExpired or domain.ErrTokenMalformed; callers
// treat both as "invalid, regenerate". The underlying HMAC comparison is
// constant-time.
func (c *Codec) Verify(token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenMalformed
	}
	if !parsed.Valid {
		return "", domain.ErrTokenMalformed
	}

	payload, ok := claims["data"].(string)
	if !ok || payload == "" {
		return "", domain.ErrTokenMalformed
	}
	return payload, nil
}
