package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	ErrMalformedLink         = errors.New("invalid confirmation link")
	ErrVerificationRejected  = errors.New("verification rejected")
	ErrSessionNotEstablished = errors.New("session not established")
)
