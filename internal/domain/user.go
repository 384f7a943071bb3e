package domain

import (
	"context"
	"time"
)

// User representa um operador do back-office (administrador dos drops e pedidos).
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserRepository define o contrato de persistência para a entidade User.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
}
