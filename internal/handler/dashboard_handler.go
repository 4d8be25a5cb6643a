package handler

import (
	"encoding/json"
	"net/http"

	"prepline/internal/hub"
	"prepline/internal/model"
	"prepline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// DashboardHandler serves the preparation-station views and the real-time
// subscription channel.
type DashboardHandler struct {
	service  service.OrderService
	hub      *hub.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service service.OrderService, h *hub.Hub, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		hub:     h,
		upgrader: websocket.Upgrader{
			// Dashboards live on tablets around the venue; origin
			// checking happens at the session layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Board handles GET /api/dashboard/{category} requests.
func (h *DashboardHandler) Board(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	board, err := h.service.Board(r.Context(), category)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// Advance handles POST /api/dashboard/{category}/advance requests.
func (h *DashboardHandler) Advance(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var req struct {
		OrderID uuid.UUID `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	status, err := h.service.Advance(r.Context(), req.OrderID, category)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// Subscribe handles GET /ws?category=... requests, upgrading the connection
// and joining it to the requested room.
func (h *DashboardHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidCategory, "category query parameter is required", h.logger)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.Subscribe(conn, category)
	h.logger.Debug().Str("category", category).Msg("dashboard connected")

	// Drain the connection until it closes; subscribers only listen.
	go func() {
		defer func() {
			h.hub.Unsubscribe(conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
