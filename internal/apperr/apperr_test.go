package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"storefront/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.NotFound("Order not found")))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(fmt.Errorf("wrapped: %w", apperr.Forbidden("nope"))))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(fmt.Errorf("user 1: %w", apperr.ErrNotFound)))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("boom")))
	assert.False(t, apperr.Is(nil, apperr.KindInternal))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindNotFound:     http.StatusNotFound,
		apperr.KindUnauthorized: http.StatusUnauthorized,
		apperr.KindForbidden:    http.StatusForbidden,
		apperr.KindValidation:   http.StatusBadRequest,
		apperr.KindConflict:     http.StatusBadRequest,
		apperr.KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperr.Internal(cause, "Could not create order")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Could not create order: connection reset", err.Error())
}
