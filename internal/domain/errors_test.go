package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("title", "required")

	if got := err.Error(); got != "validation: title: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "title", Message: "required"},
		{Field: "file", Message: "required"},
	})

	if got := err.Error(); got != "validation: 2 errors (title, file)" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestIsQuiet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{ErrStale, true},
		{fmt.Errorf("refresh notes: %w", ErrStale), true},
		{ErrDeclined, true},
		{ErrNoSession, true},
		{ErrRemote, false},
		{NewValidationError("title", "required"), false},
	}
	for _, tt := range tests {
		if got := IsQuiet(tt.err); got != tt.want {
			t.Errorf("IsQuiet(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	all := []error{
		ErrNotFound, ErrValidation, ErrUnauthorized, ErrNoSession, ErrBusy, ErrStale,
		ErrDeclined, ErrUnsupported, ErrInvalidState, ErrDeviceDenied, ErrDeviceBusy,
		ErrRemote, ErrDecode,
	}
	for i := range all {
		for j := range all {
			if i != j && errors.Is(all[i], all[j]) {
				t.Errorf("%v should not match %v", all[i], all[j])
			}
		}
	}
}
