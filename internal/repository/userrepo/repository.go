package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/database"
	"dropindrop/internal/pkg/logger"
)

const insertUserSQL = `INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
                  VALUES ($1, $2, $3, $4, $5, $6)`

// UserRepository implementa a interface domain.UserRepository
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo operador no banco de dados.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertUserSQL,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			r.logger.Warn("E-mail já cadastrado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O e-mail '%s' já está cadastrado.", user.Email))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindByEmail busca um operador pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1`

	var user domain.User
	err := r.DB.QueryRowContext(ctxTimeout, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Usuário não encontrado no DB por email.", map[string]interface{}{"email": email})
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by email", err)
	}

	r.logger.Debug("Usuário encontrado no repositório por email.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}
