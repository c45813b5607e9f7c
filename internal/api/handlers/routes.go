package handlers

import (
	"context"
	"crypto/sha256"
	"driver-route-optimizer/internal/api/dto"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/ports"
	"driver-route-optimizer/internal/services"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DefaultMaxDrivers caps driverCount when RouteHandler.MaxDrivers is unset.
const DefaultMaxDrivers = 100

// RouteHandler serves clustering and full route optimization.
type RouteHandler struct {
	Optimizer    *services.Optimizer
	Cache        ports.PlanCache
	DefaultDepot domain.Coordinate
	Rates        services.CostRates
	MaxBodyBytes int64
	MaxDrivers   int
	Log          logger.Logger
}

// checkDriverCount rejects counts above the configured cap. Cluster output
// grows with driverCount even when there are few stops.
func (h *RouteHandler) checkDriverCount(w http.ResponseWriter, r *http.Request, n int) bool {
	limit := h.MaxDrivers
	if limit <= 0 {
		limit = DefaultMaxDrivers
	}
	if n > limit {
		writeError(w, r, h.Log, http.StatusBadRequest, fmt.Sprintf("driverCount must be at most %d", limit))
		return false
	}
	return true
}

// Cluster groups orders by location only; no balancing or sequencing.
func (h *RouteHandler) Cluster(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	var req dto.ClusterRequest
	if !decodeJSON(w, r, h.Log, h.MaxBodyBytes, &req) {
		return
	}

	if !h.checkDriverCount(w, r, req.DriverCount) {
		return
	}

	stops := dto.Stops(req.Orders)
	if err := services.ValidateInput(stops, req.DriverCount, nil, nil); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	groups := h.Optimizer.Cluster(stops, req.DriverCount)
	writeJSON(w, r, h.Log, http.StatusOK, dto.NewClusterResponse(groups))
}

// Optimize runs the full pipeline and returns routes with the derived report.
// Identical requests are served from the plan cache when one is configured.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	var req dto.OptimizeRequest
	if !decodeJSON(w, r, h.Log, h.MaxBodyBytes, &req) {
		return
	}
	if !h.checkDriverCount(w, r, req.DriverCount) {
		return
	}
	if req.Depot == nil {
		d := dto.FromCoordinate(h.DefaultDepot)
		req.Depot = &d
	}

	stops := dto.Stops(req.Orders)
	depot := req.Depot.Coordinate()
	params := req.RouteParams.Domain()
	if err := services.ValidateInput(stops, req.DriverCount, &depot, &params); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	key := h.cacheKey(req)
	if cached, ok := h.lookup(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	plan, err := h.Optimizer.Optimize(r.Context(), services.OptimizeInput{
		Stops:       stops,
		DriverCount: req.DriverCount,
		Depot:       depot,
		Params:      params,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			h.Log.Warnf("optimize aborted: %v", err)
			writeError(w, r, h.Log, http.StatusServiceUnavailable, "request canceled")
			return
		}
		h.Log.Errorf("optimize failed: %v", err)
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
		return
	}

	rep := services.BuildReport(plan, params, h.Rates)
	res := dto.NewOptimizeResponse(plan, rep, h.Rates, req.RouteParams, req.Weights)

	payload, err := json.Marshal(res)
	if err != nil {
		h.Log.Errorf("encode optimize response: %v", err)
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
		return
	}
	// Cached and fresh responses share the exact same bytes.
	payload = append(payload, '\n')
	if h.Cache != nil {
		if err := h.Cache.Put(r.Context(), key, payload); err != nil {
			h.Log.Warnf("plan cache write failed: %v", err)
		}
		w.Header().Set("X-Cache", "MISS")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *RouteHandler) lookup(ctx context.Context, key string) ([]byte, bool) {
	if h.Cache == nil {
		return nil, false
	}
	b, err := h.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			h.Log.Warnf("plan cache read failed: %v", err)
		}
		return nil, false
	}
	return b, true
}

// cacheKey fingerprints everything that shapes the response: the request
// with its depot resolved, the engine constants and the cost rates.
func (h *RouteHandler) cacheKey(req dto.OptimizeRequest) string {
	b, _ := json.Marshal(struct {
		Req    dto.OptimizeRequest
		Tuning services.Tuning
		Rates  services.CostRates
	}{req, h.Optimizer.Tuning(), h.Rates})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
