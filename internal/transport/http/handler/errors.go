package handler

import (
	"errors"
	"net/http"

	"github.com/go-storefront-gateway/internal/domain"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
)

// errorStatus maps a service error to the gateway's response status. Anything that is not a
// classified backend answer is reported as a bad gateway.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// errorMessage prefers the backend's own message over the wrapped error chain.
func errorMessage(err error) string {
	var be *backend.Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	if errorStatus(err) == http.StatusBadGateway {
		return "upstream unavailable"
	}
	return err.Error()
}
