package geocode

import (
	"context"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinate
}

func newMemCache() *memCache { return &memCache{m: map[string]domain.Coordinate{}} }

func (c *memCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]domain.Coordinate{}
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memCache) PutMany(_ context.Context, coords map[string]domain.Coordinate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range coords {
		c.m[k] = v
	}
	return nil
}

func newTestGeocoder(t *testing.T, url string, cache Cache) *ORSGeocoder {
	t.Helper()
	g, err := NewORSGeocoder(ORSConfig{
		APIKey:      "test-key",
		BaseURL:     url,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	}, cache, logger.Nop())
	require.NoError(t, err)
	return g
}

func TestORSGeocoderResolvesAndCaches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Tower Bridge", r.URL.Query().Get("text"))
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-0.0754,51.5055]}}]}`))
	}))
	defer srv.Close()

	cache := newMemCache()
	g := newTestGeocoder(t, srv.URL, cache)

	got, err := g.Geocode(context.Background(), []string{" Tower  Bridge", "Tower Bridge"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "duplicates resolve once")
	assert.Equal(t, domain.Coordinate{Lat: 51.5055, Lng: -0.0754}, got["Tower Bridge"])
	assert.Equal(t, got["Tower Bridge"], got[" Tower  Bridge"])

	_, err = g.Geocode(context.Background(), []string{"Tower Bridge"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second lookup is served from cache")
	assert.Contains(t, cache.m, "Tower Bridge")
}

func TestORSGeocoderRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[2.35,48.85]}}]}`))
	}))
	defer srv.Close()

	got, err := newTestGeocoder(t, srv.URL, nil).Geocode(context.Background(), []string{"Paris"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 48.85, got["Paris"].Lat)
}

func TestORSGeocoderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestGeocoder(t, srv.URL, nil).Geocode(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var he *httpStatusError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestORSGeocoderNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	_, err := newTestGeocoder(t, srv.URL, nil).Geocode(context.Background(), []string{"nowhere"})
	assert.ErrorContains(t, err, "no geocode results")
}

func TestORSGeocoderEmptyInputAndConfig(t *testing.T) {
	_, err := NewORSGeocoder(ORSConfig{}, nil, nil)
	assert.Error(t, err)

	g := newTestGeocoder(t, "http://127.0.0.1:0", nil)
	got, err := g.Geocode(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = g.Geocode(context.Background(), []string{"  "})
	assert.Error(t, err)
}
