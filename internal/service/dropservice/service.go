// Package dropservice cria drops e aplica a regra do mesmo dia antes de enviá-los aos grupos.
package dropservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/messenger"
	"dropindrop/internal/rules/samedayrule"
	"dropindrop/internal/rules/stockrule"
)

// Service orquestra drops, histórico de envios e o gateway WhatsApp.
type Service struct {
	repo     domain.DropRepository
	gateway  messenger.Gateway
	location *time.Location
	logger   logger.Logger

	// Now é o relógio do serviço; substituível nos testes.
	Now func() time.Time
}

// NewService cria o serviço. loc define o dia civil usado pela regra do mesmo dia.
func NewService(repo domain.DropRepository, gateway messenger.Gateway, loc *time.Location, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		gateway:  gateway,
		location: loc,
		logger:   log,
		Now:      time.Now,
	}
}

func validateIDs(ids []string, what string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return apperror.NewValidationError(fmt.Sprintf("ID de %s inválido: %q.", what, id))
		}
		if seen[id] {
			return apperror.NewValidationError(fmt.Sprintf("ID de %s repetido: %s.", what, id))
		}
		seen[id] = true
	}
	return nil
}

// CreateDrop valida o payload e persiste o drop.
func (s *Service) CreateDrop(ctx context.Context, input domain.DropInput) (domain.Drop, error) {
	if strings.TrimSpace(input.Name) == "" {
		return domain.Drop{}, apperror.NewValidationError("O nome do drop é obrigatório.")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return domain.Drop{}, apperror.NewValidationError("O fim do drop deve ser posterior ao início.")
	}
	if len(input.ArticleIDs) == 0 {
		return domain.Drop{}, apperror.NewValidationError("O drop precisa de pelo menos um artigo.")
	}
	if len(input.GroupIDs) == 0 {
		return domain.Drop{}, apperror.NewValidationError("O drop precisa de pelo menos um grupo.")
	}
	if err := validateIDs(input.ArticleIDs, "artigo"); err != nil {
		return domain.Drop{}, err
	}
	if err := validateIDs(input.GroupIDs, "grupo"); err != nil {
		return domain.Drop{}, err
	}

	now := s.Now().UTC()
	drop := domain.Drop{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Category:  input.Category,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
		Articles:  make([]domain.DropArticle, 0, len(input.ArticleIDs)),
		Groups:    make([]domain.WhatsAppGroup, 0, len(input.GroupIDs)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, id := range input.ArticleIDs {
		drop.Articles = append(drop.Articles, domain.DropArticle{ID: id})
	}
	for _, id := range input.GroupIDs {
		drop.Groups = append(drop.Groups, domain.WhatsAppGroup{ID: id})
	}

	return s.repo.Create(ctx, drop)
}

// GetDrop busca um drop pelo ID.
func (s *Service) GetDrop(ctx context.Context, id string) (domain.Drop, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Drop{}, apperror.NewValidationError("O ID do drop deve ser um UUID válido.")
	}
	return s.repo.FindByID(ctx, id)
}

// PreviewSend mostra, grupo a grupo, o que seria enviado agora.
func (s *Service) PreviewSend(ctx context.Context, id string) (domain.SendPreview, error) {
	drop, err := s.GetDrop(ctx, id)
	if err != nil {
		return domain.SendPreview{}, err
	}
	return s.preview(ctx, drop, s.Now())
}

func (s *Service) preview(ctx context.Context, drop domain.Drop, now time.Time) (domain.SendPreview, error) {
	groupIDs := make([]string, 0, len(drop.Groups))
	for _, g := range drop.Groups {
		groupIDs = append(groupIDs, g.ID)
	}

	start, end := samedayrule.DayWindow(now, s.location)
	sent, err := s.repo.SentBetween(ctx, groupIDs, start, end)
	if err != nil {
		return domain.SendPreview{}, err
	}

	validations := samedayrule.BuildValidations(drop.Articles, drop.Groups, sent)

	articleIDs := drop.ArticleIDs()
	for _, v := range validations {
		if err := samedayrule.CheckPartition(v, articleIDs); err != nil {
			return domain.SendPreview{}, apperror.NewInternalError("Validação do mesmo dia inconsistente.", err)
		}
	}

	return domain.SendPreview{
		DropID:      drop.ID,
		CanSend:     samedayrule.CanSendDrop(validations),
		Validations: validations,
		Warnings:    samedayrule.AllWarnings(validations),
		Summary:     samedayrule.Summarize(validations),
	}, nil
}

// MessageText é o texto enviado ao grupo para um artigo.
func MessageText(a domain.DropArticle) string {
	return fmt.Sprintf("%s - %s FCFA", a.Name, stockrule.FormatPrice(a.Price))
}

// SendDrop envia a cada grupo os artigos ainda não enviados hoje.
// Cada (grupo, artigo, dia) é reservado no histórico antes do envio; a reserva
// é desfeita se o gateway falhar. Assim uma falha no meio, ou dois envios
// simultâneos do mesmo drop, nunca entregam o mesmo artigo duas vezes no dia.
// Falhas do gateway num grupo não interrompem os demais.
func (s *Service) SendDrop(ctx context.Context, id string) (domain.SendResult, error) {
	drop, err := s.GetDrop(ctx, id)
	if err != nil {
		return domain.SendResult{}, err
	}

	now := s.Now()
	if !drop.IsOpenAt(now) {
		return domain.SendResult{}, apperror.NewConflictError("O drop está fora da sua janela de envio.")
	}

	preview, err := s.preview(ctx, drop, now)
	if err != nil {
		return domain.SendResult{}, err
	}
	if !preview.CanSend {
		return domain.SendResult{Preview: preview}, apperror.NewConflictError(
			"Todos os artigos deste drop já foram enviados hoje a todos os grupos.")
	}

	articles := make(map[string]domain.DropArticle, len(drop.Articles))
	for _, a := range drop.Articles {
		articles[a.ID] = a
	}
	groups := make(map[string]domain.WhatsAppGroup, len(drop.Groups))
	for _, g := range drop.Groups {
		groups[g.ID] = g
	}

	dayStart, _ := samedayrule.DayWindow(now, s.location)
	sendDay := dayStart.Format("2006-01-02")

	result := domain.SendResult{
		Preview:      preview,
		SentGroups:   make([]string, 0),
		FailedGroups: make([]string, 0),
	}

	for _, v := range preview.Validations {
		if len(v.AllowedArticleIDs) == 0 {
			continue
		}
		group := groups[v.GroupID]

		sent, failed := 0, false
		for _, articleID := range v.AllowedArticleIDs {
			send := domain.DropSend{
				DropID:    drop.ID,
				GroupID:   group.ID,
				ArticleID: articleID,
				SendDay:   sendDay,
				SentAt:    now,
			}

			claimed, err := s.repo.ClaimSend(ctx, send)
			if err != nil {
				// Sem reserva não há envio; o que já saiu está registrado.
				return result, err
			}
			if !claimed {
				result.Skipped++
				continue
			}

			if err := s.gateway.SendText(ctx, group.ChatID, MessageText(articles[articleID])); err != nil {
				s.logger.Error(fmt.Sprintf("Falha ao enviar drop %s ao grupo %s.", drop.ID, group.ID), err)
				if relErr := s.repo.ReleaseSend(ctx, send); relErr != nil {
					// A reserva fica: o artigo não sai hoje para o grupo, mas nunca sai duas vezes.
					s.logger.Error("Falha ao liberar reserva de envio.", relErr)
				}
				failed = true
				break
			}
			sent++
			result.MessagesSent++
		}

		switch {
		case failed:
			result.FailedGroups = append(result.FailedGroups, group.ID)
		case sent > 0:
			result.SentGroups = append(result.SentGroups, group.ID)
		}
	}

	s.logger.Info("Drop enviado.", map[string]interface{}{
		"drop_id":       drop.ID,
		"messages_sent": result.MessagesSent,
		"skipped":       result.Skipped,
		"sent_groups":   len(result.SentGroups),
		"failed_groups": len(result.FailedGroups),
	})
	return result, nil
}
