package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
)

type stubService struct {
	registerErr error
	loginErr    error
}

func (s stubService) Register(_ context.Context, reg domain.UserRegistration) (domain.User, error) {
	if s.registerErr != nil {
		return domain.User{}, s.registerErr
	}
	return domain.User{ID: "u1", Email: reg.Email, PasswordHash: "hash", Role: domain.RoleUser}, nil
}

func (s stubService) Login(context.Context, string, string) (string, error) {
	return "jwt", s.loginErr
}

func TestRegisterUserHandler_HidesHash(t *testing.T) {
	h := NewHandler(stubService{}, logger.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/register", strings.NewReader(`{"email":"ana@drop.tg","password":"segredo123"}`))

	h.RegisterUserHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash")
	assert.Contains(t, rec.Body.String(), "ana@drop.tg")
}

func TestRegisterUserHandler_Conflict(t *testing.T) {
	h := NewHandler(stubService{registerErr: apperror.NewConflictError("duplicado")}, logger.NewNop())
	rec := httptest.NewRecorder()

	h.RegisterUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/register", strings.NewReader(`{"email":"a@b.c","password":"x"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginUserHandler(t *testing.T) {
	h := NewHandler(stubService{}, logger.NewNop())
	rec := httptest.NewRecorder()

	h.LoginUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var body TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "jwt", body.Token)
}

func TestLoginUserHandler_UnknownField(t *testing.T) {
	h := NewHandler(stubService{}, logger.NewNop())
	rec := httptest.NewRecorder()

	h.LoginUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(`{"user":"a"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
