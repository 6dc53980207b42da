package ports

import (
	"context"
	"time"
)

// BlocklistRepository is the revocation ledger for session-token identifiers.
// Records are append-only: Revoke never errors on a duplicate jti and never
// rewrites the original revocation time. IsRevoked is consulted on every
// authenticated request, straight against the backing store.
type BlocklistRepository interface {
	Revoke(ctx context.Context, jti string, when time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
