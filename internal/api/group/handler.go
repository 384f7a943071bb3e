package group

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dropindrop/internal/domain"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/respond"
)

// GroupService define o contrato que o Handler espera da camada de Serviço.
type GroupService interface {
	CreateGroup(ctx context.Context, group domain.WhatsAppGroup) (domain.WhatsAppGroup, error)
	GetGroupByID(ctx context.Context, id string) (domain.WhatsAppGroup, error)
	GetAllGroups(ctx context.Context) ([]domain.WhatsAppGroup, error)
	UpdateGroup(ctx context.Context, group domain.WhatsAppGroup) (domain.WhatsAppGroup, error)
	DeleteGroup(ctx context.Context, id string) error
}

// GroupRequest é o payload de criação e atualização de grupo.
type GroupRequest struct {
	Name   string `json:"name"`
	ChatID string `json:"chat_id"`
}

// Handler agrupa todos os métodos de Handler de grupos.
type Handler struct {
	Service GroupService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc GroupService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateGroupHandler lida com a requisição POST /v1/groups.
// @Summary Cadastra um grupo de WhatsApp
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group body GroupRequest true "Nome e chat do grupo"
// @Success 201 {object} domain.WhatsAppGroup
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Chat já cadastrado"
// @Router /groups [post]
func (h *Handler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	group, err := h.Service.CreateGroup(r.Context(), domain.WhatsAppGroup{Name: req.Name, ChatID: req.ChatID})
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusCreated, group)
}

// GetGroupHandler lida com a requisição GET /v1/groups/{id}.
// @Summary Obtém um grupo por ID
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do grupo"
// @Success 200 {object} domain.WhatsAppGroup
// @Failure 404 {object} domain.ErrorResponse
// @Router /groups/{id} [get]
func (h *Handler) GetGroupHandler(w http.ResponseWriter, r *http.Request) {
	group, err := h.Service.GetGroupByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, group)
}

// ListGroupsHandler lida com a requisição GET /v1/groups.
// @Summary Lista os grupos cadastrados
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WhatsAppGroup
// @Router /groups [get]
func (h *Handler) ListGroupsHandler(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.GetAllGroups(r.Context())
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, groups)
}

// UpdateGroupHandler lida com a requisição PUT /v1/groups/{id}.
// @Summary Atualiza um grupo
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do grupo"
// @Param group body GroupRequest true "Novos dados do grupo"
// @Success 200 {object} domain.WhatsAppGroup
// @Failure 404 {object} domain.ErrorResponse
// @Router /groups/{id} [put]
func (h *Handler) UpdateGroupHandler(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	group, err := h.Service.UpdateGroup(r.Context(), domain.WhatsAppGroup{
		ID:     chi.URLParam(r, "id"),
		Name:   req.Name,
		ChatID: req.ChatID,
	})
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, group)
}

// DeleteGroupHandler lida com a requisição DELETE /v1/groups/{id}.
// @Summary Remove um grupo sem histórico de drops
// @Tags groups
// @Security BearerAuth
// @Param id path string true "ID do grupo"
// @Success 204 "Nenhum conteúdo"
// @Failure 409 {object} domain.ErrorResponse "Grupo com histórico"
// @Router /groups/{id} [delete]
func (h *Handler) DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
