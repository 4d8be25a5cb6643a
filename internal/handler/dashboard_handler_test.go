package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"prepline/internal/hub"
	"prepline/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newDashboardRouter(h *DashboardHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/dashboard/{category}", h.Board)
	r.Post("/api/dashboard/{category}/advance", h.Advance)
	return r
}

func TestDashboardHandler_Board(t *testing.T) {
	logger := zerolog.Nop()

	board := &model.Board{
		Category: "bar",
		Pending: []model.BoardOrder{
			{ID: uuid.New(), CustomerName: "Alice", Status: model.StatusWaiting, Items: []model.BoardItem{{Name: "Espresso", Quantity: 2}}},
		},
		Completed: []model.BoardOrder{},
	}

	mockService := new(MockOrderService)
	router := newDashboardRouter(NewDashboardHandler(mockService, hub.New(nil, logger), logger))

	mockService.On("Board", mock.Anything, "bar").Return(board, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/bar", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Espresso")
	mockService.AssertExpectations(t)
}

func TestDashboardHandler_Advance(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	tests := []struct {
		name           string
		body           string
		mockStatus     model.Status
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           fmt.Sprintf(`{"orderId": %q}`, orderID),
			mockStatus:     model.StatusPreparing,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "No lines for category",
			body:           fmt.Sprintf(`{"orderId": %q}`, orderID),
			mockStatus:     model.Status(""),
			mockError:      model.ErrNoLines,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Already completed",
			body:           fmt.Sprintf(`{"orderId": %q}`, orderID),
			mockStatus:     model.Status(""),
			mockError:      model.ErrAlreadyCompleted,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Missing order ID",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Invalid JSON",
			body:           `{"orderId": `,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			router := newDashboardRouter(NewDashboardHandler(mockService, hub.New(nil, logger), logger))

			if tt.expectService {
				mockService.On("Advance", mock.Anything, orderID, "kitchen").
					Return(tt.mockStatus, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/dashboard/kitchen/advance", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
				if tt.mockError == nil {
					assert.Contains(t, w.Body.String(), string(tt.mockStatus))
				}
			}
		})
	}
}
