// Package apperrors carries the error taxonomy of the report lifecycle.
// Guard violations and validation failures are recoverable and mapped to
// client statuses; storage and unexpected errors surface as internal.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindInvalidTransition
	KindForbiddenEdit
	KindOfficerMismatch
	KindConsentRequired
	KindNoChannelSelected
	KindGeocodingFailure
	KindForbidden
	KindStorage
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a kinded error with a formatted message.
func E(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to the status the JSON surface returns.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidTransition, KindNoChannelSelected:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbiddenEdit, KindOfficerMismatch, KindConsentRequired, KindForbidden:
		return fiber.StatusForbidden
	case KindGeocodingFailure:
		// retryable client-side: the address did not resolve
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// Code returns the machine-readable error tag for the JSON surface.
func Code(err error) string {
	switch KindOf(err) {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindForbiddenEdit:
		return "forbidden_edit"
	case KindOfficerMismatch:
		return "officer_mismatch"
	case KindConsentRequired:
		return "consent_required"
	case KindNoChannelSelected:
		return "no_channel_selected"
	case KindGeocodingFailure:
		return "geocoding_failure"
	case KindForbidden:
		return "forbidden"
	case KindStorage:
		return "storage_error"
	default:
		return "internal_server_error"
	}
}
