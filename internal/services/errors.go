// Package services defines the shared error taxonomy for workflow
// operations and the helpers that wrap failures with operation context.
//
// Every engine failure maps onto one of four sentinels: an action not
// permitted by the per-stage machine, a required field missing from a
// request, validation blocking a non-admin transition, or a failure at the
// persistence boundary. All of them are recoverable by the user retrying;
// none are fatal to the process.
package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrMissingRequiredField    = errors.New("missing required field")
	ErrValidationBlocked       = errors.New("validation blocked")
	ErrRemoteOperationFailed   = errors.New("operation failed")
	ErrNotFound                = errors.New("not found")
)

// Wrap builds an error that includes operation context while tagging it with
// the provided sentinel for later classification.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrRemoteOperationFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a classified error to the status code the API boundary
// should return.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingRequiredField):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.Is(err, ErrValidationBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the human-readable portion of a wrapped error, with the
// sentinel prefix stripped, falling back to the provided default when the
// error carries no usable message.
func Detail(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrInvalidStatusTransition, ErrMissingRequiredField, ErrValidationBlocked, ErrRemoteOperationFailed, ErrNotFound} {
		prefix := sentinel.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			msg = strings.TrimPrefix(msg, prefix)
			break
		}
	}
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
