package billing

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration      = errors.New("payment gateway credentials not configured")
	ErrMissingPaymentID   = errors.New("no payment ID found in notification")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrInvalidRequest     = errors.New("invalid payment request")
	ErrUnsupportedGateway = errors.New("unsupported payment gateway")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrInvalidPaymentID   = errors.New("invalid payment ID in notification")
)

// GatewayError is a rejection (or transport failure) from the payment
// provider. Message is what the provider said.
type GatewayError struct {
	Gateway    Method
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s gateway error (%d): %s", e.Gateway, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s gateway error: %s", e.Gateway, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed record-store write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
