package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not_found", apperr.NotFound("product"), http.StatusNotFound},
		{"conflict", apperr.Conflict("duplicate"), http.StatusConflict},
		{"invalid_input", apperr.InvalidInput("bad"), http.StatusBadRequest},
		{"insufficient_stock", apperr.InsufficientStock("Camiseta", 2, 5), http.StatusBadRequest},
		{"product_unavailable", apperr.ProductUnavailable("Camiseta"), http.StatusBadRequest},
		{"invalid_transition", apperr.InvalidTransition("pending", "delivered"), http.StatusBadRequest},
		{"unauthorized", apperr.Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("staff only"), http.StatusForbidden},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apperr.StatusFor(tt.err))
		})
	}
}

func TestErrorMatching(t *testing.T) {
	// errors.Is matches by code, independent of message details.
	err := apperr.InsufficientStock("Camiseta", 1, 3)
	assert.True(t, errors.Is(err, apperr.InsufficientStock("other", 0, 0)))
	assert.False(t, errors.Is(err, apperr.NotFound("product")))

	// Wrapping keeps the typed error reachable.
	wrapped := fmt.Errorf("service: %w", apperr.NotFound("order"))
	assert.Equal(t, http.StatusNotFound, apperr.StatusFor(wrapped))
	assert.Equal(t, "not_found", apperr.CodeFor(wrapped))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Internal(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "internal", apperr.CodeFor(err))
	assert.Contains(t, err.Error(), "internal server error")
}
