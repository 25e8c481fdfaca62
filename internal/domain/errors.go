package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrLockedOut marks an OTP record whose retry budget is exhausted.
	ErrLockedOut = errors.New("too many attempts")
	// ErrDeliveryFailed marks a non-success status from the email or SMS provider.
	ErrDeliveryFailed = errors.New("delivery failed")
	// ErrUnavailable marks an unreachable backing store (Redis or Postgres).
	ErrUnavailable = errors.New("service unavailable")
)
