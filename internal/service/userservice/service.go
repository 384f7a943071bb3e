package userservice

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/token"
)

const minPasswordLength = 8

// UserService define o serviço de lógica de negócio para os operadores.
type UserService struct {
	UserRepo domain.UserRepository
	TokenSvc TokenService
}

// TokenService é o contrato da camada de token (internal/pkg/token)
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo domain.UserRepository, tokenSvc TokenService) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
	}
}

// Register registra um novo usuário com o papel padrão.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	return s.create(ctx, registration, domain.RoleUser)
}

// CreateAdmin registra um administrador. Só é exposto pela CLI de operação.
func (s *UserService) CreateAdmin(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	return s.create(ctx, registration, domain.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, registration domain.UserRegistration, role domain.UserRole) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(registration.Email))
	if email == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, apperror.NewValidationError("Email inválido.")
	}
	if len(registration.Password) < minPasswordLength {
		return domain.User{}, apperror.NewValidationError("A senha deve ter pelo menos 8 caracteres.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	now := time.Now()
	newUser := domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// E-mail duplicado já chega como ConflictError do repositório.
	return s.UserRepo.Save(ctx, newUser)
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *UserService) Login(ctx context.Context, email string, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// NotFound vira 401 para não revelar quais e-mails existem.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, nil
}
