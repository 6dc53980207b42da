// Package metrics defines all custom Prometheus metrics for the identity
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register themselves with the default registry at init via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid_credentials", "not_confirmed", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts session tokens minted.
// Label:
//   - type: "access", "refresh", "refreshed_access"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of session tokens minted, by token type.",
	},
	[]string{"type"},
)

// TokenValidationTotal counts bearer-token validations on protected routes.
// Label:
//   - result: "ok", "missing", "expired", "revoked", "malformed", "unknown_subject"
var TokenValidationTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validation_total",
		Help:      "Total number of bearer token validations, by result.",
	},
	[]string{"result"},
)

// TokensRevokedTotal counts logout revocations written to the ledger.
var TokensRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Total number of access tokens revoked via logout.",
	},
)

// SignedTokensIssuedTotal counts confirm/reset signed tokens issued.
// Label:
//   - flow: "confirm_email", "forgot_password"
var SignedTokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signed_tokens_issued_total",
		Help:      "Total number of confirm/reset signed tokens issued, by flow.",
	},
	[]string{"flow"},
)

// RegistrationsTotal counts user registrations.
// Label:
//   - result: "ok", "duplicate", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)
