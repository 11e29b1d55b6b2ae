package services_test

import (
	"errors"
	"net/http"
	"testing"

	"stagehand/internal/services"
)

func TestWrapTagsSentinel(t *testing.T) {
	err := services.Wrap(services.ErrMissingRequiredField, "transition", "notes are required", nil)
	if !errors.Is(err, services.ErrMissingRequiredField) {
		t.Fatalf("expected sentinel to survive wrapping: %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := services.Wrap(services.ErrRemoteOperationFailed, "transition", "persist stage change", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to survive wrapping: %v", err)
	}
	if !errors.Is(err, services.ErrRemoteOperationFailed) {
		t.Fatalf("expected sentinel to survive wrapping: %v", err)
	}
}

func TestWrapDefaultsToRemoteFailure(t *testing.T) {
	err := services.Wrap(nil, "stage action", "", errors.New("boom"))
	if !errors.Is(err, services.ErrRemoteOperationFailed) {
		t.Fatalf("nil marker should default to remote failure: %v", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err      error
		expected int
	}{
		{services.ErrMissingRequiredField, http.StatusBadRequest},
		{services.ErrInvalidStatusTransition, http.StatusConflict},
		{services.ErrValidationBlocked, http.StatusUnprocessableEntity},
		{services.ErrRemoteOperationFailed, http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		wrapped := services.Wrap(tc.err, "op", "detail", nil)
		if got := services.HTTPStatus(wrapped); got != tc.expected {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.expected)
		}
	}
}

func TestDetailStripsSentinelPrefix(t *testing.T) {
	err := services.Wrap(services.ErrRemoteOperationFailed, "transition", "backend said no", nil)
	if got := services.Detail(err, "Failed to transition song stage"); got != "transition: backend said no" {
		t.Fatalf("Detail = %q", got)
	}
}

func TestDetailFallsBack(t *testing.T) {
	if got := services.Detail(nil, "Failed to update stage status"); got != "Failed to update stage status" {
		t.Fatalf("Detail = %q", got)
	}
}
