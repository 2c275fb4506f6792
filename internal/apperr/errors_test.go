package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeAndStatus(t *testing.T) {
	cases := []struct {
		err        error
		wantCode   string
		wantStatus int
	}{
		{ErrValidation, "validation_error", http.StatusBadRequest},
		{ErrUnauthorized, "unauthorized", http.StatusUnauthorized},
		{ErrForbidden, "forbidden", http.StatusForbidden},
		{ErrNotFound, "not_found", http.StatusNotFound},
		{ErrConflict, "conflict", http.StatusConflict},
		{ErrInternal, "internal_error", http.StatusInternalServerError},
		{errors.New("driver: bad connection"), "internal_error", http.StatusInternalServerError},
		{nil, "internal_error", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Code(tc.err); got != tc.wantCode {
			t.Errorf("Code(%v) = %q, want %q", tc.err, got, tc.wantCode)
		}
		if got := Status(tc.err); got != tc.wantStatus {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.wantStatus)
		}
	}
}

// Wrapped sentinels must keep their classification; repositories wrap with
// context via fmt.Errorf("%w: ...").
func TestWrappedClassification(t *testing.T) {
	err := fmt.Errorf("%w: booking 42", ErrNotFound)
	if Code(err) != "not_found" {
		t.Errorf("wrapped ErrNotFound classified as %q", Code(err))
	}
	if Status(err) != http.StatusNotFound {
		t.Errorf("wrapped ErrNotFound status = %d", Status(err))
	}
	deep := fmt.Errorf("outer: %w", fmt.Errorf("%w: field missing", ErrValidation))
	if Status(deep) != http.StatusBadRequest {
		t.Errorf("double-wrapped ErrValidation status = %d", Status(deep))
	}
}
