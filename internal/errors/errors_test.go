package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "dropindrop/internal/errors"
)

func TestMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"validation", apperror.NewValidationError("ticket inválido"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthorized", apperror.NewUnauthorizedError("token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperror.NewForbiddenError("role"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", apperror.NewNotFoundError("pedido"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", apperror.NewConflictError("retirada"), http.StatusConflict, "CONFLICT"},
		{"internal", apperror.NewDBError("insert", errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"wrapped", fmt.Errorf("camada: %w", apperror.NewConflictError("x")), http.StatusConflict, "CONFLICT"},
		{"plain", errors.New("qualquer"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, category, _ := apperror.MapToHTTPStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.category, category)
		})
	}
}

func TestMapToHTTPStatus_HidesInternalCause(t *testing.T) {
	err := apperror.NewDBError("falha ao inserir pedido", errors.New("pq: senha incorreta"))

	_, _, message := apperror.MapToHTTPStatus(err)

	assert.NotContains(t, message, "senha")
	assert.Contains(t, err.Error(), "pq: senha incorreta")
}

func TestInternalError_Unwrap(t *testing.T) {
	root := errors.New("conexão perdida")
	err := apperror.NewInternalError("falha", root)

	assert.ErrorIs(t, err, root)
}
