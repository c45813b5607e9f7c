package api

import (
	"driver-route-optimizer/internal/api/handlers"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/platform/metrics"
	"driver-route-optimizer/internal/ports"
	"driver-route-optimizer/internal/services"
	"net/http"

	"golang.org/x/time/rate"
)

// Dependencies handed to NewRouter. Cache may be nil.
type Deps struct {
	Stops     ports.StopRepository
	Geocoder  ports.Geocoder
	Optimizer *services.Optimizer
	Cache     ports.PlanCache
	Depot     domain.Coordinate
	Rates     services.CostRates
	Log       logger.Logger

	// RateLimitRPS <= 0 disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
	// MaxDrivers <= 0 selects handlers.DefaultMaxDrivers.
	MaxDrivers int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	metrics.Register()

	mux := http.NewServeMux()

	stopHandler := &handlers.StopHandler{Repo: d.Stops, Log: d.Log}
	geoHandler := &handlers.GeocodeHandler{
		Geocoder:     d.Geocoder,
		MaxBodyBytes: d.MaxBodyBytes,
		Log:          d.Log,
	}
	routeHandler := &handlers.RouteHandler{
		Optimizer:    d.Optimizer,
		Cache:        d.Cache,
		DefaultDepot: d.Depot,
		Rates:        d.Rates,
		MaxBodyBytes: d.MaxBodyBytes,
		MaxDrivers:   d.MaxDrivers,
		Log:          d.Log,
	}

	routes := []struct {
		pattern string
		handler http.Handler
	}{
		{"/health", http.HandlerFunc(handlers.Health)},
		{"/stops", http.HandlerFunc(stopHandler.List)},
		{"/geocode", http.HandlerFunc(geoHandler.Geocode)},
		{"/upload", http.HandlerFunc(geoHandler.Upload)},
		{"/cluster", http.HandlerFunc(routeHandler.Cluster)},
		{"/optimize", http.HandlerFunc(routeHandler.Optimize)},
		{"/metrics", metrics.Handler()},
	}
	known := make(map[string]struct{}, len(routes))
	for _, rt := range routes {
		mux.Handle(rt.pattern, rt.handler)
		known[rt.pattern] = struct{}{}
	}

	var limiter *rate.Limiter
	if d.RateLimitRPS > 0 {
		burst := d.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(d.RateLimitRPS), burst)
	}

	return requestIDMiddleware(loggingMiddleware(d.Log, known, rateLimitMiddleware(limiter, mux)))
}
