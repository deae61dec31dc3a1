package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "wrapped not found", err: fmt.Errorf("get result: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "validation", err: ErrValidation, want: http.StatusUnprocessableEntity},
		{name: "permission", err: ErrPermissionDenied, want: http.StatusForbidden},
		{name: "network", err: fmt.Errorf("upload: %w", ErrNetwork), want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, UserMessage(fmt.Errorf("x: %w", ErrNetwork)), "Network problem")
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("boom")))
}
