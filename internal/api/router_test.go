package api

import (
	"bytes"
	"context"
	"driver-route-optimizer/internal/adapters/cache"
	"driver-route-optimizer/internal/adapters/geocode"
	"driver-route-optimizer/internal/api/dto"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/platform/metrics"
	"driver-route-optimizer/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStops struct {
	stops []domain.Stop
	err   error
}

func (s stubStops) ListStops(context.Context) ([]domain.Stop, error) { return s.stops, s.err }

func testDeps() Deps {
	return Deps{
		Stops:     stubStops{stops: []domain.Stop{{ID: "s1", Address: "Tower Bridge", Location: domain.Coordinate{Lat: 51.5055, Lng: -0.0754}}}},
		Geocoder:  geocode.NewMockGeocoder(geocode.DefaultMockBase, geocode.DefaultMockSpread),
		Optimizer: services.NewOptimizer(services.DefaultTuning(), logger.Nop()),
		Depot:     domain.Coordinate{Lat: 51.5074, Lng: -0.1278},
		Rates:     services.DefaultCostRates(),
		Log:       logger.Nop(),
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func londonOrders(n int) []dto.Order {
	orders := make([]dto.Order, 0, n)
	for i := range n {
		orders = append(orders, dto.Order{
			ID:      fmt.Sprintf("o%d", i+1),
			Address: fmt.Sprintf("%d High St", i+1),
			Lat:     51.45 + float64(i%5)*0.02,
			Lng:     -0.2 + float64(i/5)*0.03,
		})
	}
	return orders
}

func TestHealth(t *testing.T) {
	h := NewRouter(testDeps())

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"route optimization service is running"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = do(t, h, http.MethodPost, "/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestRequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	NewRouter(testDeps()).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestListStops(t *testing.T) {
	rec := do(t, NewRouter(testDeps()), http.MethodGet, "/stops", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.OrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "s1", res.Orders[0].ID)

	deps := testDeps()
	deps.Stops = stubStops{err: errors.New("boom")}
	rec = do(t, NewRouter(deps), http.MethodGet, "/stops", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGeocode(t *testing.T) {
	h := NewRouter(testDeps())

	rec := do(t, h, http.MethodPost, "/geocode", dto.GeocodeRequest{Addresses: []string{" 10 Downing St ", "", "Big Ben"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.OrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Orders, 2)
	assert.Equal(t, "order_1", res.Orders[0].ID)
	assert.Equal(t, "10 Downing St", res.Orders[0].Address)
	assert.Equal(t, "order_2", res.Orders[1].ID)
	assert.InDelta(t, 51.5074, res.Orders[1].Lat, 0.05)

	rec = do(t, h, http.MethodPost, "/geocode", dto.GeocodeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/geocode", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRawAndMultipart(t *testing.T) {
	h := NewRouter(testDeps())

	csv := "id,address,lat,lng\na,Tower Bridge,51.5055,-0.0754\n"
	rec := do(t, h, http.MethodPost, "/upload", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.OrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "a", res.Orders[0].ID)
	assert.Equal(t, 51.5055, res.Orders[0].Lat)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "addresses.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("10 Downing St\nBig Ben\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res = dto.OrdersResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Orders, 2)
	assert.Equal(t, "Big Ben", res.Orders[1].Address)
	assert.Equal(t, "order_2", res.Orders[1].ID)

	rec = do(t, h, http.MethodPost, "/upload", "   \n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCluster(t *testing.T) {
	h := NewRouter(testDeps())

	rec := do(t, h, http.MethodPost, "/cluster", dto.ClusterRequest{Orders: londonOrders(12), DriverCount: 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.ClusterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Routes, 3)

	total := 0
	for i, r := range res.Routes {
		assert.Equal(t, fmt.Sprintf("driver_%d", i+1), r.Driver)
		assert.Len(t, r.OrderDetails, len(r.Orders))
		total += len(r.Orders)
	}
	assert.Equal(t, 12, total)

	rec = do(t, h, http.MethodPost, "/cluster", dto.ClusterRequest{Orders: londonOrders(3), DriverCount: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid driver count")
}

func TestOptimize(t *testing.T) {
	h := NewRouter(testDeps())

	req := dto.OptimizeRequest{
		Orders:      londonOrders(15),
		DriverCount: 3,
		RouteParams: dto.RouteParams{ServiceTime: 5, MaxWorkingHours: 8},
		Weights:     &dto.Weights{Distance: 0.5, Time: 0.3, Difficulty: 0.2},
	}
	rec := do(t, h, http.MethodPost, "/optimize", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"), "no cache configured")

	var res dto.OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.PlanID)
	assert.Equal(t, 51.5074, res.Depot.Lat, "missing depot falls back to the default")
	require.Len(t, res.Routes, 3)
	require.Len(t, res.RouteDetails, 3)
	assert.Equal(t, "3/3", res.Summary.RoutesInTime)
	assert.Equal(t, 0.5, res.Weights.Distance)

	seen := map[string]bool{}
	for _, r := range res.Routes {
		for _, id := range r.Orders {
			assert.False(t, seen[id], "order %s assigned twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 15)
}

func TestOptimizeValidation(t *testing.T) {
	h := NewRouter(testDeps())

	cases := map[string]dto.OptimizeRequest{
		"no orders":      {DriverCount: 2},
		"zero drivers":   {Orders: londonOrders(2)},
		"bad coordinate": {Orders: []dto.Order{{ID: "x", Lat: 91}}, DriverCount: 1},
		"bad depot":      {Orders: londonOrders(2), DriverCount: 1, Depot: &dto.LatLng{Lat: 0, Lng: 200}},
		"negative param": {Orders: londonOrders(2), DriverCount: 1, RouteParams: dto.RouteParams{ServiceTime: -1}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/optimize", req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestOptimizeServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	deps := testDeps()
	deps.Cache = cache.NewRedisPlanCache(rdb, time.Minute)
	h := NewRouter(deps)

	req := dto.OptimizeRequest{Orders: londonOrders(8), DriverCount: 2}

	first := do(t, h, http.MethodPost, "/optimize", req)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(t, h, http.MethodPost, "/optimize", req)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	req.DriverCount = 3
	third := do(t, h, http.MethodPost, "/optimize", req)
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
}

func TestRateLimit(t *testing.T) {
	deps := testDeps()
	deps.RateLimitRPS = 0.001
	deps.RateLimitBurst = 2
	h := NewRouter(deps)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil).Code)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(testDeps())
	do(t, h, http.MethodGet, "/health", nil)

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}

// httpSeries counts http_requests_total series and sums the ones for path.
func httpSeries(t *testing.T, path string) (int, float64) {
	t.Helper()
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)

	series, total := 0, 0.0
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			series++
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "path" && lp.GetValue() == path {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return series, total
}

func TestMetricsRouteLabelsBounded(t *testing.T) {
	h := NewRouter(testDeps())
	do(t, h, http.MethodGet, "/nope/warmup", nil)
	before, otherBefore := httpSeries(t, "other")

	for i := range 200 {
		rec := do(t, h, http.MethodGet, fmt.Sprintf("/nope/%d", i), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	after, otherAfter := httpSeries(t, "other")
	assert.Equal(t, before, after)
	assert.InDelta(t, 200, otherAfter-otherBefore, 0.001)
}

func TestRouteLabel(t *testing.T) {
	routes := map[string]struct{}{"/optimize": {}}
	assert.Equal(t, "/optimize", routeLabel(routes, "/optimize"))
	assert.Equal(t, "other", routeLabel(routes, "/optimize/extra"))
	assert.Equal(t, "other", routeLabel(routes, "/"))
}

func TestDriverCountCapped(t *testing.T) {
	h := NewRouter(testDeps())

	rec := do(t, h, http.MethodPost, "/optimize", dto.OptimizeRequest{Orders: londonOrders(3), DriverCount: 101})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 100")

	rec = do(t, h, http.MethodPost, "/cluster", dto.ClusterRequest{Orders: londonOrders(3), DriverCount: 101})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 100")

	deps := testDeps()
	deps.MaxDrivers = 5
	h = NewRouter(deps)

	// More drivers than orders stays valid below the cap.
	rec = do(t, h, http.MethodPost, "/optimize", dto.OptimizeRequest{Orders: londonOrders(2), DriverCount: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Routes, 5)

	rec = do(t, h, http.MethodPost, "/optimize", dto.OptimizeRequest{Orders: londonOrders(2), DriverCount: 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 5")
}

func TestBodyTooLarge(t *testing.T) {
	deps := testDeps()
	deps.MaxBodyBytes = 16
	h := NewRouter(deps)

	rec := do(t, h, http.MethodPost, "/geocode", dto.GeocodeRequest{Addresses: []string{"a very long address that exceeds the limit"}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
