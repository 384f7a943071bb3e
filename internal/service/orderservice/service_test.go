package orderservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/service/orderservice"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, o domain.Order) (domain.Order, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByTicket(ctx context.Context, code string) (domain.Order, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ApplyStateChange(ctx context.Context, id string, c domain.StateChange) (domain.Order, error) {
	args := m.Called(ctx, id, c)
	return args.Get(0).(domain.Order), args.Error(1)
}

type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Save(ctx context.Context, a domain.Article) (domain.Article, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.Article), args.Error(1)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id string) (domain.Article, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Article), args.Error(1)
}

func (m *MockArticleRepository) FindAll(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Article), args.Error(1)
}

func (m *MockArticleRepository) AdjustStock(ctx context.Context, adj domain.StockAdjustmentRequest) (domain.Article, error) {
	args := m.Called(ctx, adj)
	return args.Get(0).(domain.Article), args.Error(1)
}

// seqTickets devolve os códigos na ordem, um por chamada.
type seqTickets struct {
	codes []string
	calls int
}

func (s *seqTickets) Generate() (string, error) {
	code := s.codes[s.calls%len(s.codes)]
	s.calls++
	return code, nil
}

var at = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

func newService(orders *MockOrderRepository, articles *MockArticleRepository, tickets orderservice.TicketGenerator) *orderservice.Service {
	svc := orderservice.NewService(orders, articles, tickets, 3, logger.NewNop())
	svc.Now = func() time.Time { return at }
	return svc
}

func order(pay domain.PaymentStatus, pickup domain.PickupStatus) domain.Order {
	return domain.Order{ID: uuid.NewString(), PaymentStatus: pay, PickupStatus: pickup}
}

func ticketCollision() error {
	return apperror.NewDBError("Falha ao atualizar estado do pedido",
		&pq.Error{Code: "23505", Constraint: orderservice.TicketConstraint})
}

func TestPlaceOrder_ComputesAmount(t *testing.T) {
	orders, articles := new(MockOrderRepository), new(MockArticleRepository)
	articleID := uuid.NewString()
	articles.On("FindByID", mock.Anything, articleID).
		Return(domain.Article{ID: articleID, Name: "Bolsa", Price: 25000, Stock: 5, IsActive: true}, nil)
	orders.On("Save", mock.Anything, mock.MatchedBy(func(o domain.Order) bool {
		return o.Amount == 50000 && o.PaymentStatus == domain.PaymentPending &&
			o.PickupStatus == domain.PickupPending && o.TicketCode == ""
	})).Return(domain.Order{ID: "o1"}, nil)

	_, err := newService(orders, articles, &seqTickets{}).PlaceOrder(context.Background(),
		domain.OrderInput{CustomerPhone: " +22890000000 ", ArticleID: articleID, Quantity: 2})

	require.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	orders, articles := new(MockOrderRepository), new(MockArticleRepository)
	articleID := uuid.NewString()
	articles.On("FindByID", mock.Anything, articleID).
		Return(domain.Article{ID: articleID, Price: 1000, Stock: 1, IsActive: true}, nil)

	_, err := newService(orders, articles, &seqTickets{}).PlaceOrder(context.Background(),
		domain.OrderInput{CustomerPhone: "+228", ArticleID: articleID, Quantity: 2})

	var ce *apperror.ConflictError
	assert.True(t, errors.As(err, &ce))
	orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMarkPaid_IssuesTicket(t *testing.T) {
	orders := new(MockOrderRepository)
	o := order(domain.PaymentPending, domain.PickupPending)
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	orders.On("ApplyStateChange", mock.Anything, o.ID, domain.StateChange{
		From:       o.State(),
		To:         domain.OrderState{PaymentStatus: domain.PaymentPaid, PickupStatus: domain.PickupPending},
		TicketCode: "TKT-20251015-0001",
		At:         at,
	}).Return(domain.Order{ID: o.ID, TicketCode: "TKT-20251015-0001", PaymentStatus: domain.PaymentPaid}, nil)

	got, err := newService(orders, nil, &seqTickets{codes: []string{"TKT-20251015-0001"}}).MarkPaid(context.Background(), o.ID)

	require.NoError(t, err)
	assert.Equal(t, "TKT-20251015-0001", got.TicketCode)
}

func TestMarkPaid_RetriesOnTicketCollision(t *testing.T) {
	orders := new(MockOrderRepository)
	o := order(domain.PaymentPending, domain.PickupPending)
	tickets := &seqTickets{codes: []string{"TKT-20251015-0001", "TKT-20251015-0002"}}
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	orders.On("ApplyStateChange", mock.Anything, o.ID, mock.MatchedBy(func(c domain.StateChange) bool {
		return c.TicketCode == "TKT-20251015-0001"
	})).Return(domain.Order{}, ticketCollision()).Once()
	orders.On("ApplyStateChange", mock.Anything, o.ID, mock.MatchedBy(func(c domain.StateChange) bool {
		return c.TicketCode == "TKT-20251015-0002"
	})).Return(domain.Order{TicketCode: "TKT-20251015-0002"}, nil).Once()

	got, err := newService(orders, nil, tickets).MarkPaid(context.Background(), o.ID)

	require.NoError(t, err)
	assert.Equal(t, "TKT-20251015-0002", got.TicketCode)
	assert.Equal(t, 2, tickets.calls)
}

func TestMarkPaid_GivesUpAfterMaxAttempts(t *testing.T) {
	orders := new(MockOrderRepository)
	o := order(domain.PaymentPending, domain.PickupPending)
	tickets := &seqTickets{codes: []string{"TKT-20251015-0001"}}
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	orders.On("ApplyStateChange", mock.Anything, o.ID, mock.Anything).Return(domain.Order{}, ticketCollision())

	_, err := newService(orders, nil, tickets).MarkPaid(context.Background(), o.ID)

	var ie *apperror.InternalError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 3, tickets.calls)
}

func TestMarkPaid_AlreadyPaid(t *testing.T) {
	orders := new(MockOrderRepository)
	o := order(domain.PaymentPaid, domain.PickupPending)
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := newService(orders, nil, &seqTickets{}).MarkPaid(context.Background(), o.ID)

	var ce *apperror.ConflictError
	assert.True(t, errors.As(err, &ce))
}

func TestMarkPaid_PickupNotPending(t *testing.T) {
	for _, pickup := range []domain.PickupStatus{domain.PickupCancelled, domain.PickupPickedUp} {
		t.Run(string(pickup), func(t *testing.T) {
			orders := new(MockOrderRepository)
			o := order(domain.PaymentPending, pickup)
			orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
			tickets := &seqTickets{codes: []string{"DROP-AAAA1111"}}

			_, err := newService(orders, nil, tickets).MarkPaid(context.Background(), o.ID)

			var ce *apperror.ConflictError
			require.True(t, errors.As(err, &ce))
			orders.AssertNotCalled(t, "ApplyStateChange", mock.Anything, mock.Anything, mock.Anything)
			assert.Zero(t, tickets.calls)
		})
	}
}

func TestPaymentTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.PaymentStatus
		refund  bool
		allowed bool
	}{
		{"falha de pendente", domain.PaymentPending, false, true},
		{"falha de pago", domain.PaymentPaid, false, false},
		{"reembolso de pago", domain.PaymentPaid, true, true},
		{"reembolso de pendente", domain.PaymentPending, true, false},
		{"reembolso de reembolsado", domain.PaymentRefunded, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := new(MockOrderRepository)
			o := order(tc.from, domain.PickupPending)
			orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
			orders.On("ApplyStateChange", mock.Anything, o.ID, mock.Anything).Return(o, nil)
			svc := newService(orders, nil, &seqTickets{})

			var err error
			if tc.refund {
				_, err = svc.Refund(context.Background(), o.ID)
			} else {
				_, err = svc.MarkFailed(context.Background(), o.ID)
			}

			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			var ce *apperror.ConflictError
			assert.True(t, errors.As(err, &ce))
			orders.AssertNotCalled(t, "ApplyStateChange", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPickup(t *testing.T) {
	cases := []struct {
		name    string
		pay     domain.PaymentStatus
		pickup  domain.PickupStatus
		message string
	}{
		{"pago e pendente", domain.PaymentPaid, domain.PickupPending, ""},
		{"não pago", domain.PaymentPending, domain.PickupPending, "ainda não foi confirmado"},
		{"já retirado", domain.PaymentPaid, domain.PickupPickedUp, "já foi retirado"},
		{"cancelado", domain.PaymentPaid, domain.PickupCancelled, "cancelada"},
		{"reembolsado", domain.PaymentRefunded, domain.PickupPending, "reembolsado"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := new(MockOrderRepository)
			o := order(tc.pay, tc.pickup)
			orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
			orders.On("ApplyStateChange", mock.Anything, o.ID, domain.StateChange{
				From: o.State(),
				To:   domain.OrderState{PaymentStatus: domain.PaymentPaid, PickupStatus: domain.PickupPickedUp},
				At:   at,
			}).Return(domain.Order{PickupStatus: domain.PickupPickedUp}, nil)

			got, err := newService(orders, nil, &seqTickets{}).Pickup(context.Background(), o.ID)

			if tc.message == "" {
				require.NoError(t, err)
				assert.Equal(t, domain.PickupPickedUp, got.PickupStatus)
				return
			}
			var ce *apperror.ConflictError
			require.True(t, errors.As(err, &ce))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestCancelPickup_OnlyFromPending(t *testing.T) {
	orders := new(MockOrderRepository)
	o := order(domain.PaymentPaid, domain.PickupPickedUp)
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := newService(orders, nil, &seqTickets{}).CancelPickup(context.Background(), o.ID)

	var ce *apperror.ConflictError
	assert.True(t, errors.As(err, &ce))
}

func TestFindByTicket(t *testing.T) {
	orders := new(MockOrderRepository)
	orders.On("FindByTicket", mock.Anything, "TKT-20251015-0042").Return(domain.Order{ID: "o1"}, nil)
	svc := newService(orders, nil, &seqTickets{})

	got, err := svc.FindByTicket(context.Background(), " tkt-20251015-0042 ")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	_, err = svc.FindByTicket(context.Background(), "TKT-2025-42")
	var ve *apperror.ValidationError
	assert.True(t, errors.As(err, &ve))
}
