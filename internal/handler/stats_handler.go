package handler

import (
	"net/http"

	"prepline/internal/service"

	"github.com/rs/zerolog"
)

// StatsHandler serves the aggregate statistics snapshot and the debug reset.
type StatsHandler struct {
	stats  service.StatsService
	orders service.OrderService
	logger zerolog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats service.StatsService, orders service.OrderService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		orders: orders,
		logger: logger.With().Str("handler", "stats").Logger(),
	}
}

// Snapshot handles GET /api/stats requests.
func (h *StatsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Reset handles POST /api/debug/reset requests.
func (h *StatsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.ResetData(r.Context()); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "data reset"})
}
