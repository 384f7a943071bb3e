// Package orderservice conduz o ciclo de vida do pedido: pagamento, emissão do
// ticket e retirada no balcão.
package orderservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/database"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/rules/stockrule"
	"dropindrop/internal/rules/ticketrule"
)

// TicketConstraint é a restrição UNIQUE de orders.ticket_code.
const TicketConstraint = "orders_ticket_code_key"

// TicketGenerator produz códigos de ticket. *ticketrule.Generator o implementa.
type TicketGenerator interface {
	Generate() (string, error)
}

// Service implementa as operações sobre pedidos.
type Service struct {
	orders      domain.OrderRepository
	articles    domain.ArticleRepository
	tickets     TicketGenerator
	maxAttempts int
	logger      logger.Logger

	Now func() time.Time
}

// NewService cria o serviço. maxAttempts limita as tentativas de gerar um ticket único.
func NewService(orders domain.OrderRepository, articles domain.ArticleRepository, tickets TicketGenerator, maxAttempts int, log logger.Logger) *Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{
		orders:      orders,
		articles:    articles,
		tickets:     tickets,
		maxAttempts: maxAttempts,
		logger:      log,
		Now:         time.Now,
	}
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do pedido deve ser um UUID válido.")
	}
	return nil
}

// PlaceOrder registra o pedido de um cliente com pagamento e retirada pendentes.
// O valor é calculado a partir do preço atual do artigo.
func (s *Service) PlaceOrder(ctx context.Context, input domain.OrderInput) (domain.Order, error) {
	phone := strings.TrimSpace(input.CustomerPhone)
	if phone == "" {
		return domain.Order{}, apperror.NewValidationError("O telefone do cliente é obrigatório.")
	}
	if input.Quantity < 1 {
		return domain.Order{}, apperror.NewValidationError("A quantidade deve ser pelo menos 1.")
	}
	if _, err := uuid.Parse(input.ArticleID); err != nil {
		return domain.Order{}, apperror.NewValidationError("O ID do artigo deve ser um UUID válido.")
	}

	article, err := s.articles.FindByID(ctx, input.ArticleID)
	if err != nil {
		return domain.Order{}, err
	}
	if !article.IsActive {
		return domain.Order{}, apperror.NewConflictError("Este artigo não está mais à venda.")
	}
	if stockrule.IsOutOfStock(article.Stock) || article.Stock < input.Quantity {
		return domain.Order{}, apperror.NewConflictError(fmt.Sprintf("Estoque insuficiente para \"%s\".", article.Name))
	}

	now := s.Now().UTC()
	order := domain.Order{
		ID:            uuid.NewString(),
		CustomerPhone: phone,
		ArticleID:     article.ID,
		Quantity:      input.Quantity,
		Amount:        article.Price * int64(input.Quantity),
		PaymentStatus: domain.PaymentPending,
		PickupStatus:  domain.PickupPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.orders.Save(ctx, order)
}

// GetOrder busca um pedido pelo ID.
func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if err := parseID(id); err != nil {
		return domain.Order{}, err
	}
	return s.orders.FindByID(ctx, id)
}

// FindByTicket busca o pedido do ticket apresentado no balcão.
func (s *Service) FindByTicket(ctx context.Context, code string) (domain.Order, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ticketrule.IsValidTicketFormat(code) {
		return domain.Order{}, apperror.NewValidationError("Formato de ticket inválido. Esperado TKT-AAAAMMDD-NNNN.")
	}
	return s.orders.FindByTicket(ctx, code)
}

// MarkPaid confirma o pagamento e emite o ticket de retirada. Uma colisão de
// ticket no banco gera um novo código, até maxAttempts tentativas.
func (s *Service) MarkPaid(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !ticketrule.CanTransitionPayment(order.PaymentStatus, domain.PaymentPaid) {
		return domain.Order{}, apperror.NewConflictError(
			fmt.Sprintf("Pagamento não pode passar de %s para PAID.", order.PaymentStatus))
	}
	// Ticket só vale para retirada ainda pendente.
	if order.PickupStatus != domain.PickupPending {
		return domain.Order{}, apperror.NewConflictError(
			fmt.Sprintf("Retirada em %s: o pedido não pode mais ser pago.", order.PickupStatus))
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.tickets.Generate()
		if err != nil {
			return domain.Order{}, apperror.NewInternalError("Falha ao gerar ticket.", err)
		}

		updated, err := s.orders.ApplyStateChange(ctx, order.ID, domain.StateChange{
			From:       order.State(),
			To:         domain.OrderState{PaymentStatus: domain.PaymentPaid, PickupStatus: order.PickupStatus},
			TicketCode: code,
			At:         s.Now().UTC(),
		})
		if err == nil {
			s.logger.Info("Pagamento confirmado e ticket emitido.", map[string]interface{}{
				"order_id": order.ID,
				"ticket":   updated.TicketCode,
				"attempt":  attempt,
			})
			return updated, nil
		}
		if !database.IsUniqueViolation(err, TicketConstraint) {
			return domain.Order{}, err
		}

		s.logger.Warn("Colisão de ticket, gerando outro código.", map[string]interface{}{
			"order_id": order.ID,
			"attempt":  attempt,
		})
	}

	return domain.Order{}, apperror.NewInternalError(
		fmt.Sprintf("Não foi possível gerar um ticket único após %d tentativas.", s.maxAttempts), nil)
}

// MarkFailed registra a falha do pagamento.
func (s *Service) MarkFailed(ctx context.Context, id string) (domain.Order, error) {
	return s.changePayment(ctx, id, domain.PaymentFailed)
}

// Refund estorna um pedido pago.
func (s *Service) Refund(ctx context.Context, id string) (domain.Order, error) {
	return s.changePayment(ctx, id, domain.PaymentRefunded)
}

func (s *Service) changePayment(ctx context.Context, id string, to domain.PaymentStatus) (domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !ticketrule.CanTransitionPayment(order.PaymentStatus, to) {
		return domain.Order{}, apperror.NewConflictError(
			fmt.Sprintf("Pagamento não pode passar de %s para %s.", order.PaymentStatus, to))
	}

	return s.orders.ApplyStateChange(ctx, order.ID, domain.StateChange{
		From: order.State(),
		To:   domain.OrderState{PaymentStatus: to, PickupStatus: order.PickupStatus},
		At:   s.Now().UTC(),
	})
}

// pickupRefusal explica ao operador por que a retirada foi recusada.
func pickupRefusal(state domain.OrderState) string {
	switch {
	case state.PickupStatus == domain.PickupPickedUp:
		return "Este pedido já foi retirado."
	case state.PickupStatus == domain.PickupCancelled:
		return "A retirada deste pedido foi cancelada."
	case state.PaymentStatus == domain.PaymentPending:
		return "O pagamento deste pedido ainda não foi confirmado."
	case state.PaymentStatus == domain.PaymentFailed:
		return "O pagamento deste pedido falhou."
	case state.PaymentStatus == domain.PaymentRefunded:
		return "Este pedido foi reembolsado."
	}
	return "Este pedido não pode ser retirado."
}

// Pickup entrega o pedido ao cliente.
func (s *Service) Pickup(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	state := order.State()
	if !ticketrule.CanPickup(state) {
		return domain.Order{}, apperror.NewConflictError(pickupRefusal(state))
	}

	return s.orders.ApplyStateChange(ctx, order.ID, domain.StateChange{
		From: state,
		To:   domain.OrderState{PaymentStatus: state.PaymentStatus, PickupStatus: domain.PickupPickedUp},
		At:   s.Now().UTC(),
	})
}

// CancelPickup cancela uma retirada ainda pendente.
func (s *Service) CancelPickup(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !ticketrule.CanTransitionPickup(order.PickupStatus, domain.PickupCancelled) {
		return domain.Order{}, apperror.NewConflictError(
			fmt.Sprintf("Retirada não pode passar de %s para CANCELLED.", order.PickupStatus))
	}

	return s.orders.ApplyStateChange(ctx, order.ID, domain.StateChange{
		From: order.State(),
		To:   domain.OrderState{PaymentStatus: order.PaymentStatus, PickupStatus: domain.PickupCancelled},
		At:   s.Now().UTC(),
	})
}
