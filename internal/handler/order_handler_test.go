package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"prepline/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderDetail, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderService) Advance(ctx context.Context, orderID uuid.UUID, category string) (model.Status, error) {
	args := m.Called(ctx, orderID, category)
	return args.Get(0).(model.Status), args.Error(1)
}

func (m *MockOrderService) Board(ctx context.Context, category string) (*model.Board, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Board), args.Error(1)
}

func (m *MockOrderService) Detail(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]model.OrderSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderSummary), args.Error(1)
}

func (m *MockOrderService) UpdateHeader(ctx context.Context, orderID uuid.UUID, upd *model.OrderUpdate) error {
	args := m.Called(ctx, orderID, upd)
	return args.Error(0)
}

func (m *MockOrderService) ResetData(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// newOrderRouter mounts the handler the way the real router does, so URL
// parameters resolve.
func newOrderRouter(h *OrderHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/orders", h.Create)
	r.Get("/api/orders", h.ListAll)
	r.Get("/api/orders/{id}", h.Detail)
	r.Put("/api/orders/{id}", h.Update)
	r.Delete("/api/orders/{id}", h.Delete)
	return r
}

func TestOrderHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	orderID := uuid.New()
	testDetail := &model.OrderDetail{
		Order: model.Order{ID: orderID, CustomerName: "Alice", PaymentMethod: model.PaymentCash},
		Lines: []model.OrderLine{
			{ProductID: "P001", ProductName: "Espresso", UnitPrice: 1.50, DashboardCategory: "bar", Quantity: 2, Status: model.StatusWaiting},
		},
		Total: 3.00,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *model.OrderDetail
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name: "Success",
			requestBody: &model.CreateOrderRequest{
				CustomerName:  "Alice",
				PaymentMethod: model.PaymentCash,
				Lines:         []model.OrderLineRequest{{ProductID: "P001", Quantity: 2}},
			},
			mockReturn:     testDetail,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name: "Insufficient stock",
			requestBody: &model.CreateOrderRequest{
				CustomerName:  "Bob",
				PaymentMethod: model.PaymentCard,
				Lines:         []model.OrderLineRequest{{ProductID: "P001", Quantity: 99}},
			},
			mockError:      &model.InsufficientStockError{ProductID: "P001"},
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name: "Unknown product",
			requestBody: &model.CreateOrderRequest{
				CustomerName:  "Carol",
				PaymentMethod: model.PaymentCash,
				Lines:         []model.OrderLineRequest{{ProductID: "P999", Quantity: 1}},
			},
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name: "Validation error",
			requestBody: &model.CreateOrderRequest{
				PaymentMethod: model.PaymentCash,
				Lines:         []model.OrderLineRequest{{ProductID: "P001", Quantity: 1}},
			},
			mockError:      model.NewDomainError(model.ErrCodeMissingField, "Customer name is required"),
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "not json",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name: "Service internal error",
			requestBody: &model.CreateOrderRequest{
				CustomerName:  "Dave",
				PaymentMethod: model.PaymentCash,
				Lines:         []model.OrderLineRequest{{ProductID: "P001", Quantity: 1}},
			},
			mockError:      errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			router := newOrderRouter(NewOrderHandler(mockService, logger))

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectService {
				mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.CreateOrderRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestOrderHandler_Detail(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	testDetail := &model.OrderDetail{
		Order: model.Order{ID: orderID, CustomerName: "Alice"},
		Total: 3.00,
	}

	tests := []struct {
		name           string
		path           string
		mockReturn     *model.OrderDetail
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			path:           "/api/orders/" + orderID.String(),
			mockReturn:     testDetail,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Not found",
			path:           "/api/orders/" + uuid.New().String(),
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid UUID format",
			path:           "/api/orders/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			router := newOrderRouter(NewOrderHandler(mockService, logger))

			if tt.expectService {
				mockService.On("Detail", mock.Anything, mock.AnythingOfType("uuid.UUID")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestOrderHandler_ListAll_EmptyIsJSONArray(t *testing.T) {
	logger := zerolog.Nop()

	mockService := new(MockOrderService)
	router := newOrderRouter(NewOrderHandler(mockService, logger))

	mockService.On("ListAll", mock.Anything).Return([]model.OrderSummary{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestOrderHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	mockService := new(MockOrderService)
	router := newOrderRouter(NewOrderHandler(mockService, logger))

	mockService.On("Delete", mock.Anything, orderID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/"+orderID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
