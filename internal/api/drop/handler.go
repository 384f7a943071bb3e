package drop

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dropindrop/internal/domain"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/respond"
)

// DropService define o contrato que o Handler espera da camada de Serviço.
type DropService interface {
	CreateDrop(ctx context.Context, input domain.DropInput) (domain.Drop, error)
	GetDrop(ctx context.Context, id string) (domain.Drop, error)
	PreviewSend(ctx context.Context, id string) (domain.SendPreview, error)
	SendDrop(ctx context.Context, id string) (domain.SendResult, error)
}

// Handler agrupa os handlers de drops. SendTimeout é o prazo de escrita da
// resposta do envio, que substitui o WriteTimeout do servidor nessa rota.
type Handler struct {
	Service     DropService
	SendTimeout time.Duration
	Logger      logger.Logger
}

func NewHandler(svc DropService, sendTimeout time.Duration, log logger.Logger) *Handler {
	return &Handler{Service: svc, SendTimeout: sendTimeout, Logger: log}
}

// CreateDropHandler lida com POST /v1/drops.
// @Summary Cria um drop
// @Tags drops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param drop body domain.DropInput true "Drop: janela, artigos e grupos"
// @Success 201 {object} domain.Drop
// @Failure 400 {object} domain.ErrorResponse
// @Router /drops [post]
func (h *Handler) CreateDropHandler(w http.ResponseWriter, r *http.Request) {
	var input domain.DropInput
	if err := respond.Decode(r, &input); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	drop, err := h.Service.CreateDrop(r.Context(), input)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusCreated, drop)
}

// GetDropHandler lida com GET /v1/drops/{id}.
// @Summary Busca um drop
// @Tags drops
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do drop"
// @Success 200 {object} domain.Drop
// @Failure 404 {object} domain.ErrorResponse
// @Router /drops/{id} [get]
func (h *Handler) GetDropHandler(w http.ResponseWriter, r *http.Request) {
	drop, err := h.Service.GetDrop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, drop)
}

// PreviewSendHandler lida com GET /v1/drops/{id}/send-preview.
// @Summary Pré-visualiza o envio (regra do mesmo dia)
// @Tags drops
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do drop"
// @Success 200 {object} domain.SendPreview
// @Failure 404 {object} domain.ErrorResponse
// @Router /drops/{id}/send-preview [get]
func (h *Handler) PreviewSendHandler(w http.ResponseWriter, r *http.Request) {
	preview, err := h.Service.PreviewSend(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, preview)
}

// SendDropHandler lida com POST /v1/drops/{id}/send.
// @Summary Envia o drop aos grupos
// @Description Envia apenas os artigos ainda não enviados hoje a cada grupo.
// @Tags drops
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do drop"
// @Success 200 {object} domain.SendResult
// @Failure 409 {object} domain.ErrorResponse "Fora da janela ou nada a enviar"
// @Router /drops/{id}/send [post]
func (h *Handler) SendDropHandler(w http.ResponseWriter, r *http.Request) {
	if h.SendTimeout > 0 {
		rc := http.NewResponseController(w)
		if err := rc.SetWriteDeadline(time.Now().Add(h.SendTimeout)); err != nil {
			h.Logger.Debug("Prazo de escrita do envio não ajustado.", map[string]interface{}{"error": err.Error()})
		}
	}

	result, err := h.Service.SendDrop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, result)
}
