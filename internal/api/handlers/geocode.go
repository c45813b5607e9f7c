package handlers

import (
	"driver-route-optimizer/internal/api/dto"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/ports"
	"driver-route-optimizer/internal/upload"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GeocodeHandler turns addresses, typed or uploaded, into orders with coordinates.
type GeocodeHandler struct {
	Geocoder     ports.Geocoder
	MaxBodyBytes int64
	Log          logger.Logger
}

func (h *GeocodeHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	var req dto.GeocodeRequest
	if !decodeJSON(w, r, h.Log, h.MaxBodyBytes, &req) {
		return
	}

	addresses := make([]string, 0, len(req.Addresses))
	for _, a := range req.Addresses {
		if a = strings.TrimSpace(a); a != "" {
			addresses = append(addresses, a)
		}
	}
	if len(addresses) == 0 {
		writeError(w, r, h.Log, http.StatusBadRequest, "no addresses provided")
		return
	}

	orders, err := h.resolve(r, addresses, 0)
	if err != nil {
		h.Log.Errorf("geocode failed: %v", err)
		writeError(w, r, h.Log, http.StatusBadGateway, "geocoding failed")
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, dto.OrdersResponse{Orders: orders})
}

// Upload accepts a CSV or plain-text address file, either as the raw body or
// as the "file" field of a multipart form.
func (h *GeocodeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer r.Body.Close()

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, h.Log, http.StatusBadRequest, "multipart upload must carry a \"file\" field")
			return
		}
		defer f.Close()
		body = f
	}

	parsed, err := upload.Parse(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, h.Log, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	orders := dto.Orders(parsed.Stops)
	if len(parsed.Addresses) > 0 {
		geocoded, err := h.resolve(r, parsed.Addresses, len(orders))
		if err != nil {
			h.Log.Errorf("geocode upload failed: %v", err)
			writeError(w, r, h.Log, http.StatusBadGateway, "geocoding failed")
			return
		}
		orders = append(orders, geocoded...)
	}

	writeJSON(w, r, h.Log, http.StatusOK, dto.OrdersResponse{Orders: orders})
}

// resolve geocodes addresses and numbers the resulting orders from offset+1.
func (h *GeocodeHandler) resolve(r *http.Request, addresses []string, offset int) ([]dto.Order, error) {
	if h.Geocoder == nil {
		return nil, errors.New("geocoder not configured")
	}

	coords, err := h.Geocoder.Geocode(r.Context(), addresses)
	if err != nil {
		return nil, err
	}

	orders := make([]dto.Order, 0, len(addresses))
	for i, a := range addresses {
		c, ok := coords[a]
		if !ok {
			return nil, fmt.Errorf("no coordinate returned for %q", a)
		}
		orders = append(orders, dto.FromStop(domain.Stop{
			ID:       fmt.Sprintf("order_%d", offset+i+1),
			Address:  a,
			Location: c,
		}))
	}
	return orders, nil
}
