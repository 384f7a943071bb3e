package domain

import (
	"context"
	"time"
)

// PaymentStatus é o estado de pagamento de um pedido.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Valid indica se o valor pertence à enumeração.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// PickupStatus é o estado de retirada de um pedido.
type PickupStatus string

const (
	PickupPending   PickupStatus = "PENDING"
	PickupPickedUp  PickupStatus = "PICKED_UP"
	PickupCancelled PickupStatus = "CANCELLED"
)

// Valid indica se o valor pertence à enumeração.
func (s PickupStatus) Valid() bool {
	switch s {
	case PickupPending, PickupPickedUp, PickupCancelled:
		return true
	}
	return false
}

// Order representa um pedido de cliente. TicketCode só existe depois do pagamento.
type Order struct {
	ID            string        `json:"id"`
	CustomerPhone string        `json:"customer_phone"`
	ArticleID     string        `json:"article_id"`
	Quantity      int           `json:"quantity"`
	Amount        int64         `json:"amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PickupStatus  PickupStatus  `json:"pickup_status"`
	TicketCode    string        `json:"ticket_code,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	PickedUpAt    *time.Time    `json:"picked_up_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OrderState é o instantâneo (pagamento, retirada) usado pelas regras de retirada.
type OrderState struct {
	PaymentStatus PaymentStatus `json:"payment_status"`
	PickupStatus  PickupStatus  `json:"pickup_status"`
}

// State extrai o instantâneo de estados do pedido.
func (o Order) State() OrderState {
	return OrderState{PaymentStatus: o.PaymentStatus, PickupStatus: o.PickupStatus}
}

// OrderInput é o payload de criação de pedido pelo cliente.
type OrderInput struct {
	CustomerPhone string `json:"customer_phone"`
	ArticleID     string `json:"article_id"`
	Quantity      int    `json:"quantity"`
}

// StateChange descreve uma atualização condicional: só é aplicada se o pedido
// ainda estiver no estado From.
type StateChange struct {
	From       OrderState
	To         OrderState
	TicketCode string // vazio = mantém o atual
	At         time.Time
}

// OrderRepository define o contrato de persistência de pedidos.
type OrderRepository interface {
	Save(ctx context.Context, order Order) (Order, error)
	FindByID(ctx context.Context, id string) (Order, error)
	FindByTicket(ctx context.Context, code string) (Order, error)
	ApplyStateChange(ctx context.Context, id string, change StateChange) (Order, error)
}
