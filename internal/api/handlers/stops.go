package handlers

import (
	"driver-route-optimizer/internal/api/dto"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/ports"
	"net/http"
)

// StopHandler exposes the seeded demo stops.
type StopHandler struct {
	Repo ports.StopRepository
	Log  logger.Logger
}

func (h *StopHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodGet) {
		return
	}
	if h.Repo == nil {
		writeError(w, r, h.Log, http.StatusServiceUnavailable, "stop repository not configured")
		return
	}

	stops, err := h.Repo.ListStops(r.Context())
	if err != nil {
		h.Log.Errorf("list stops failed: %v", err)
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, dto.OrdersResponse{Orders: dto.Orders(stops)})
}
