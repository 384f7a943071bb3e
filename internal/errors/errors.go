package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do Drop-In-Drop.
// Ela permite que o Handler acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes
}

// --- Erros de Domínio ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// UnauthorizedError representa credenciais ausentes ou inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um erro 401.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa um usuário autenticado sem a permissão necessária.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden }
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um erro 403.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (OCC, transição de estado proibida, envio bloqueado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// --- Erros de Infraestrutura ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Erro Interno: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("Erro Interno: %s", e.Msg)
}
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor.
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB)", msg), err)
}

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
// Erros internos nunca expõem a causa raiz ao cliente.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus() >= http.StatusInternalServerError {
			return appErr.HTTPStatus(), appErr.Category(), "Ocorreu um erro interno."
		}
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
