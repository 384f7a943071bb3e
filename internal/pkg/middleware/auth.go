package middleware

import (
	"context"
	"net/http"
	"strings"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/respond"
	"dropindrop/internal/pkg/token"
)

// ContextKey é o tipo das chaves que o middleware coloca no contexto.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

// UserClaims representa os dados do operador extraídos do JWT.
type UserClaims struct {
	UserID string
	Role   domain.UserRole
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware valida o JWT do header Authorization e anexa as claims ao contexto.
func NewAuthMiddleware(tokenSvc TokenService, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				respond.Error(w, r, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				respond.Error(w, r, log, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			ctx := WithUserClaims(r.Context(), UserClaims{
				UserID: claims.UserID,
				Role:   domain.UserRole(claims.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserClaims anexa as claims ao contexto.
func WithUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, UserClaimsKey, claims)
}

// GetUserClaimsFromContext extrai as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// PermissionMiddleware só deixa passar operadores com uma das roles informadas.
func PermissionMiddleware(log logger.Logger, requiredRoles ...domain.UserRole) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				respond.Error(w, r, log, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}

			for _, role := range requiredRoles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("Acesso negado por role.", map[string]interface{}{"user_id": claims.UserID, "role": claims.Role})
			respond.Error(w, r, log, apperror.NewForbiddenError("Você não tem a permissão necessária."))
		})
	}
}
