package order

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dropindrop/internal/domain"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/respond"
)

// OrderService define o contrato que o Handler espera da camada de Serviço.
type OrderService interface {
	PlaceOrder(ctx context.Context, input domain.OrderInput) (domain.Order, error)
	FindByTicket(ctx context.Context, code string) (domain.Order, error)
	MarkPaid(ctx context.Context, id string) (domain.Order, error)
	MarkFailed(ctx context.Context, id string) (domain.Order, error)
	Refund(ctx context.Context, id string) (domain.Order, error)
	Pickup(ctx context.Context, id string) (domain.Order, error)
	CancelPickup(ctx context.Context, id string) (domain.Order, error)
}

// Handler agrupa os handlers de pedidos.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// PlaceOrderHandler lida com POST /v1/orders.
// @Summary Registra um pedido
// @Tags orders
// @Accept json
// @Produce json
// @Param order body domain.OrderInput true "Pedido do cliente"
// @Success 201 {object} domain.Order
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Artigo indisponível"
// @Router /orders [post]
func (h *Handler) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	var input domain.OrderInput
	if err := respond.Decode(r, &input); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	order, err := h.Service.PlaceOrder(r.Context(), input)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusCreated, order)
}

// FindByTicketHandler lida com GET /v1/orders/ticket/{code}.
// @Summary Busca pedido pelo ticket de retirada
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param code path string true "Ticket (TKT-AAAAMMDD-NNNN)"
// @Success 200 {object} domain.Order
// @Failure 400 {object} domain.ErrorResponse "Formato inválido"
// @Failure 404 {object} domain.ErrorResponse
// @Router /orders/ticket/{code} [get]
func (h *Handler) FindByTicketHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.FindByTicket(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, order)
}

func (h *Handler) transition(fn func(context.Context, string) (domain.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, h.Logger, err)
			return
		}
		respond.JSON(w, h.Logger, http.StatusOK, order)
	}
}

// MarkPaidHandler lida com POST /v1/orders/{id}/paid e emite o ticket.
// @Summary Confirma o pagamento
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.Order
// @Failure 409 {object} domain.ErrorResponse
// @Router /orders/{id}/paid [post]
func (h *Handler) MarkPaidHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.MarkPaid)(w, r)
}

// MarkFailedHandler lida com POST /v1/orders/{id}/failed.
// @Summary Registra falha de pagamento
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.Order
// @Failure 409 {object} domain.ErrorResponse
// @Router /orders/{id}/failed [post]
func (h *Handler) MarkFailedHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.MarkFailed)(w, r)
}

// RefundHandler lida com POST /v1/orders/{id}/refund.
// @Summary Reembolsa um pedido pago
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.Order
// @Failure 409 {object} domain.ErrorResponse
// @Router /orders/{id}/refund [post]
func (h *Handler) RefundHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.Refund)(w, r)
}

// PickupHandler lida com POST /v1/orders/{id}/pickup.
// @Summary Entrega o pedido no balcão
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.Order
// @Failure 409 {object} domain.ErrorResponse "Pedido não pode ser retirado"
// @Router /orders/{id}/pickup [post]
func (h *Handler) PickupHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.Pickup)(w, r)
}

// CancelPickupHandler lida com POST /v1/orders/{id}/cancel.
// @Summary Cancela a retirada
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.Order
// @Failure 409 {object} domain.ErrorResponse
// @Router /orders/{id}/cancel [post]
func (h *Handler) CancelPickupHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.CancelPickup)(w, r)
}
