package handlers

import (
	"net/http"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, nil, http.MethodGet) {
		return
	}

	res := map[string]string{
		"status":  "ok",
		"message": "route optimization service is running",
	}
	writeJSON(w, r, nil, http.StatusOK, res)
}
