package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("engine", &buf)
	l.With("req_id", "abc").Infof("clustered %d stops", 10)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "engine", rec["component"])
	assert.Equal(t, "abc", rec["req_id"])
	assert.Equal(t, "clustered 10 stops", rec["message"])
	assert.Equal(t, "info", rec["level"])
}

func TestLoggerEvent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("http", &buf)
	l.Event(zerolog.WarnLevel).Int("status", 429).Msg("rate limited")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, float64(429), rec["status"])
	assert.Equal(t, "warn", rec["level"])
}

func TestNopLogger(t *testing.T) {
	l := Nop()
	l.Debugf("debug %d", 1)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
	l.With("k", 1).Infof("child")
}
