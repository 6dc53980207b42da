package ports

import "context"

// VerificationLimiter bounds how often confirmation/reset emails may be
// requested for a single address within a rolling window.
type VerificationLimiter interface {
	// Allow records one request for email and reports whether it is still
	// within the limit.
	Allow(ctx context.Context, email string) (bool, error)
}
