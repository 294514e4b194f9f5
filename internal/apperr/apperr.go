// Package apperr is the error taxonomy shared by services and handlers.
// Fail-closed kinds abort the request with no side effects; RefundFailed
// and NotificationFailed are fail-open and are only ever logged.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation              Kind = "validation"
	NotFound                Kind = "not_found"
	InsufficientStock       Kind = "insufficient_stock"
	InvalidPromoCode        Kind = "invalid_promo_code"
	TotalMismatch           Kind = "total_mismatch"
	InvalidPaymentSignature Kind = "invalid_payment_signature"
	InvalidTransition       Kind = "invalid_transition"
	CannotCancel            Kind = "cannot_cancel"
	RefundFailed            Kind = "refund_failed"
	NotificationFailed      Kind = "notification_failed"
	Internal                Kind = "internal"
)

type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string // per-field messages, Validation only
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Invalid builds a Validation error from a per-field message map.
func Invalid(fields map[string]string) *Error {
	return &Error{Kind: Validation, Msg: "validation failed", Fields: fields}
}

// KindOf extracts the kind from any error in the chain; plain errors are
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool { return KindOf(err) == kind }
