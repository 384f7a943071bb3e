package order

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, in domain.OrderInput) (domain.Order, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderService) FindByTicket(ctx context.Context, code string) (domain.Order, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderService) MarkPaid(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderService) MarkFailed(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderService) Refund(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderService) Pickup(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderService) CancelPickup(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/orders", h.PlaceOrderHandler)
	r.Get("/v1/orders/ticket/{code}", h.FindByTicketHandler)
	r.Post("/v1/orders/{id}/paid", h.MarkPaidHandler)
	r.Post("/v1/orders/{id}/failed", h.MarkFailedHandler)
	r.Post("/v1/orders/{id}/refund", h.RefundHandler)
	r.Post("/v1/orders/{id}/pickup", h.PickupHandler)
	r.Post("/v1/orders/{id}/cancel", h.CancelPickupHandler)
	return r
}

func TestPlaceOrderHandler(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("PlaceOrder", mock.Anything, domain.OrderInput{CustomerPhone: "+228", ArticleID: "a1", Quantity: 1}).
		Return(domain.Order{ID: "o1", PaymentStatus: domain.PaymentPending}, nil)

	rec := httptest.NewRecorder()
	routes(NewHandler(svc, logger.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/orders",
		strings.NewReader(`{"customer_phone":"+228","article_id":"a1","quantity":1}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payment_status":"PENDING"`)
	assert.NotContains(t, rec.Body.String(), "ticket_code")
}

func TestTransitionsRouteToService(t *testing.T) {
	cases := map[string]string{
		"paid":   "MarkPaid",
		"failed": "MarkFailed",
		"refund": "Refund",
		"pickup": "Pickup",
		"cancel": "CancelPickup",
	}

	for action, method := range cases {
		t.Run(action, func(t *testing.T) {
			svc := new(MockOrderService)
			svc.On(method, mock.Anything, "o1").Return(domain.Order{ID: "o1"}, nil)

			rec := httptest.NewRecorder()
			routes(NewHandler(svc, logger.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/orders/o1/"+action, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestPickupHandler_Refused(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("Pickup", mock.Anything, "o1").Return(domain.Order{}, apperror.NewConflictError("Este pedido já foi retirado."))

	rec := httptest.NewRecorder()
	routes(NewHandler(svc, logger.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/orders/o1/pickup", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "já foi retirado")
}

func TestFindByTicketHandler_BadFormat(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("FindByTicket", mock.Anything, "XYZ").Return(domain.Order{}, apperror.NewValidationError("Formato de ticket inválido."))

	rec := httptest.NewRecorder()
	routes(NewHandler(svc, logger.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/orders/ticket/XYZ", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
