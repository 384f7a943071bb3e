package groupservice

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
)

// GroupRepository define o contrato que o Serviço de Grupos espera da camada de Persistência.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group domain.WhatsAppGroup) (domain.WhatsAppGroup, error)
	GetGroupByID(ctx context.Context, id string) (domain.WhatsAppGroup, error)
	GetAllGroups(ctx context.Context) ([]domain.WhatsAppGroup, error)
	UpdateGroup(ctx context.Context, group domain.WhatsAppGroup) (domain.WhatsAppGroup, error)
	DeleteGroup(ctx context.Context, id string) error
}

// Service mantém o cadastro de grupos de WhatsApp que recebem drops.
type Service struct {
	repo   GroupRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Grupos.
func NewService(repo GroupRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateGroup cadastra um grupo após validar nome e chat.
func (s *Service) CreateGroup(ctx context.Context, group domain.WhatsAppGroup) (domain.WhatsAppGroup, error) {
	group = normalize(group)
	if err := validate(group); err != nil {
		s.logger.Warn("Grupo inválido.", map[string]interface{}{"name": group.Name, "error": err.Error()})
		return domain.WhatsAppGroup{}, err
	}
	group.ID = ""
	return s.repo.CreateGroup(ctx, group)
}

// GetGroupByID busca um grupo pelo ID.
func (s *Service) GetGroupByID(ctx context.Context, id string) (domain.WhatsAppGroup, error) {
	if err := validateID(id); err != nil {
		return domain.WhatsAppGroup{}, err
	}
	return s.repo.GetGroupByID(ctx, id)
}

// GetAllGroups lista os grupos cadastrados.
func (s *Service) GetAllGroups(ctx context.Context) ([]domain.WhatsAppGroup, error) {
	return s.repo.GetAllGroups(ctx)
}

// UpdateGroup troca nome e chat de um grupo.
func (s *Service) UpdateGroup(ctx context.Context, group domain.WhatsAppGroup) (domain.WhatsAppGroup, error) {
	if err := validateID(group.ID); err != nil {
		return domain.WhatsAppGroup{}, err
	}
	group = normalize(group)
	if err := validate(group); err != nil {
		return domain.WhatsAppGroup{}, err
	}

	updated, err := s.repo.UpdateGroup(ctx, group)
	if err != nil {
		return domain.WhatsAppGroup{}, err
	}
	s.logger.Info("Grupo atualizado.", map[string]interface{}{"id": updated.ID, "chat_id": updated.ChatID})
	return updated, nil
}

// DeleteGroup remove um grupo.
func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.repo.DeleteGroup(ctx, id)
}

func normalize(g domain.WhatsAppGroup) domain.WhatsAppGroup {
	g.Name = strings.TrimSpace(g.Name)
	g.ChatID = strings.TrimSpace(g.ChatID)
	return g
}

func validate(g domain.WhatsAppGroup) error {
	if n := utf8.RuneCountInString(g.Name); n < 3 || n > 100 {
		return apperror.NewValidationError("O nome do grupo deve ter entre 3 e 100 caracteres.")
	}
	if g.ChatID == "" {
		return apperror.NewValidationError("O chat_id do grupo é obrigatório.")
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do grupo deve ser um UUID válido.")
	}
	return nil
}
