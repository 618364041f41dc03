package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewConflict("stale", nil), "CONFLICT", http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewForbidden("no")), "FORBIDDEN", http.StatusForbidden},
		{"fiber not found", fiber.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"fiber teapot", fiber.ErrTeapot, "REQUEST_FAILED", http.StatusTeapot},
		{"no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"upstream", NewBadGateway("down", cause), "UPSTREAM_UNAVAILABLE", http.StatusBadGateway},
		{"unknown", cause, "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.status, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBadGateway("technician backend unavailable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "technician backend unavailable: connection refused", err.Error())

	assert.Equal(t, "service not found", NewNotFound("service", nil).Error())
}
