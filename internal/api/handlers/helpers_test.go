package handlers

import (
	"bytes"
	"driver-route-optimizer/internal/platform/logger"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/stops", nil)
	rec := httptest.NewRecorder()

	writeJSON(rec, req, logger.NewWithWriter("api", &buf), http.StatusOK, make(chan int))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "encode failed")
	assert.Contains(t, buf.String(), "path=/stops")
}

func TestWriteJSONNilLogger(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() { writeJSON(rec, req, nil, http.StatusOK, make(chan int)) })
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
