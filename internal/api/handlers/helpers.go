package handlers

import (
	"driver-route-optimizer/internal/platform/logger"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const defaultMaxBodyBytes = 10 << 20

// writeJSON encodes v as the response body. Encoding failures go to log, which may be nil.
func writeJSON(w http.ResponseWriter, r *http.Request, log logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && log != nil {
		log.Warnf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, status int, msg string) {
	writeJSON(w, r, log, status, map[string]string{"error": msg})
}

func allowMethod(w http.ResponseWriter, r *http.Request, log logger.Logger, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, log, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeJSON reads exactly one JSON object from the body into dst.
// Unknown fields are tolerated so clients can send extra UI state.
func decodeJSON(w http.ResponseWriter, r *http.Request, log logger.Logger, limit int64, dst any) bool {
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	defer r.Body.Close()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, log, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, r, log, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, log, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
