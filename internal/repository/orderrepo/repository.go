package orderrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dropindrop/internal/domain"
	"dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
)

const orderColumns = `id, customer_phone, article_id, quantity, amount, payment_status, pickup_status,
        ticket_code, paid_at, picked_up_at, created_at, updated_at`

// OrderRepository implementa a interface domain.OrderRepository.
type OrderRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOrderRepository cria o repositório de pedidos.
func NewOrderRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *OrderRepository {
	return &OrderRepository{DB: db, DBTimeout: dbTimeout, logger: log}
}

func scanOrder(row interface{ Scan(...interface{}) error }) (domain.Order, error) {
	var (
		o      domain.Order
		ticket sql.NullString
	)
	err := row.Scan(
		&o.ID,
		&o.CustomerPhone,
		&o.ArticleID,
		&o.Quantity,
		&o.Amount,
		&o.PaymentStatus,
		&o.PickupStatus,
		&ticket,
		&o.PaidAt,
		&o.PickedUpAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	o.TicketCode = ticket.String
	return o, err
}

// Save insere um novo pedido (sem ticket).
func (r *OrderRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const insertSQL = `INSERT INTO orders (id, customer_phone, article_id, quantity, amount,
        payment_status, pickup_status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		order.ID,
		order.CustomerPhone,
		order.ArticleID,
		order.Quantity,
		order.Amount,
		order.PaymentStatus,
		order.PickupStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir pedido no DB.", err)
		return domain.Order{}, errors.NewDBError("Falha ao inserir pedido", err)
	}

	r.logger.Info("Pedido registrado.", map[string]interface{}{"order_id": order.ID, "article_id": order.ArticleID})
	return order, nil
}

// FindByID busca um pedido pelo ID.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(ctxTimeout, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.Order{}, errors.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao buscar pedido", err)
	}
	return order, nil
}

// FindByTicket busca um pedido pelo código do ticket de retirada.
func (r *OrderRepository) FindByTicket(ctx context.Context, code string) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(ctxTimeout, `SELECT `+orderColumns+` FROM orders WHERE ticket_code = $1`, code))
	if err == sql.ErrNoRows {
		return domain.Order{}, errors.NewNotFoundError(fmt.Sprintf("Nenhum pedido com o ticket %s.", code))
	}
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao buscar pedido por ticket", err)
	}
	return order, nil
}

// ApplyStateChange atualiza os estados do pedido somente se ele ainda estiver em change.From.
// Nenhuma linha afetada significa que outra operação mudou o pedido antes: ConflictError.
// Uma violação de UNIQUE no ticket_code é devolvida encapsulada para o serviço decidir o retry.
func (r *OrderRepository) ApplyStateChange(ctx context.Context, id string, change domain.StateChange) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE orders SET
            payment_status = $1::text,
            pickup_status = $2::text,
            ticket_code = COALESCE($3, ticket_code),
            paid_at = CASE WHEN $1::text = 'PAID' AND paid_at IS NULL THEN $4 ELSE paid_at END,
            picked_up_at = CASE WHEN $2::text = 'PICKED_UP' THEN $4 ELSE picked_up_at END,
            updated_at = $4
        WHERE id = $5 AND payment_status = $6 AND pickup_status = $7
        RETURNING ` + orderColumns

	ticket := sql.NullString{String: change.TicketCode, Valid: change.TicketCode != ""}

	order, err := scanOrder(r.DB.QueryRowContext(ctxTimeout, updateSQL,
		string(change.To.PaymentStatus),
		string(change.To.PickupStatus),
		ticket,
		change.At,
		id,
		string(change.From.PaymentStatus),
		string(change.From.PickupStatus),
	))
	if err == sql.ErrNoRows {
		r.logger.Warn("Transição de pedido rejeitada: estado mudou.", map[string]interface{}{
			"order_id":     id,
			"from_payment": change.From.PaymentStatus,
			"from_pickup":  change.From.PickupStatus,
		})
		return domain.Order{}, errors.NewConflictError("O pedido foi modificado por outra operação. Recarregue e tente novamente.")
	}
	if err != nil {
		return domain.Order{}, errors.NewDBError("Falha ao atualizar estado do pedido", err)
	}

	r.logger.Info("Estado do pedido atualizado.", map[string]interface{}{
		"order_id": id,
		"payment":  order.PaymentStatus,
		"pickup":   order.PickupStatus,
	})
	return order, nil
}
