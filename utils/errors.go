package utils

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyCart is returned when an order is built from a cart without items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrVerificationFailed means the gateway callback signature did not match.
	ErrVerificationFailed = errors.New("payment verification failed")

	// ErrNotFound is wrapped by every lookup that misses.
	ErrNotFound = errors.New("not found")

	// ErrGatewayNotConfigured is returned while gateway credentials are absent.
	ErrGatewayNotConfigured = &ConfigurationError{Component: "payment gateway", Message: "credentials are not configured"}
)

// ValidationError is a user input problem that blocks submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConfigurationError requires operator intervention; never recoverable by the user.
type ConfigurationError struct {
	Component string
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

// RepositoryError wraps any read or write failure against the database.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// InvalidTransitionError rejects an order or payment status change.
type InvalidTransitionError struct {
	Kind string
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Kind, e.From, e.To)
}

// GatewayError is a failure reported by (or while calling) the payment gateway.
type GatewayError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment gateway: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("payment gateway: %s (status %d)", e.Message, e.StatusCode)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// StatusFor maps an error from the taxonomy above to an HTTP status code.
func StatusFor(err error) int {
	var (
		validationErr *ValidationError
		configErr     *ConfigurationError
		transitionErr *InvalidTransitionError
		gatewayErr    *GatewayError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrVerificationFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &transitionErr):
		return http.StatusConflict
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
