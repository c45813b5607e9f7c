package geocode

import (
	"context"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Persistent address cache consulted before any external call.
// Implemented by cache.SQLGeocodeCache and cache.SqliteGeocodeCache.
type Cache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinate, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinate) error
}

type ORSConfig struct {
	APIKey  string
	BaseURL string
	// ISO country code passed as boundary.country; empty means unrestricted.
	Country string
	// Requests per second allowed against the upstream API; 0 disables throttling.
	RPS         float64
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// ORSGeocoder resolves addresses through OpenRouteService (/geocode/search).
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - Throttled external calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	client      *http.Client
	apiKey      string
	baseURL     string
	country     string
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	cache       Cache
	log         logger.Logger
}

func NewORSGeocoder(cfg ORSConfig, cache Cache, log logger.Logger) (*ORSGeocoder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openrouteservice.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	return &ORSGeocoder{
		client:      &http.Client{Timeout: cfg.Timeout},
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		country:     cfg.Country,
		limiter:     limiter,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		cache:       cache,
		log:         log.With("adapter", "ors_geocoder"),
	}, nil
}

// Geocode resolves addresses, hitting the cache first and the API only for misses.
func (o *ORSGeocoder) Geocode(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinate, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	if len(addresses) == 0 {
		return map[string]domain.Coordinate{}, nil
	}

	needed := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		norm := Normalize(a)
		if norm == "" {
			return nil, errors.New("ors geocode: address must be non-empty")
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		needed = append(needed, norm)
	}

	hits := make(map[string]domain.Coordinate)
	if o.cache != nil {
		hits, err = o.cache.GetMany(ctx, needed)
		if err != nil {
			return nil, fmt.Errorf("ors geocode: read cache: %w", err)
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh := make(map[string]domain.Coordinate, len(misses))
	for _, a := range misses {
		c, err := o.lookup(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("ors geocode %q: %w", a, err)
		}
		fresh[a] = c
	}

	if o.cache != nil && len(fresh) > 0 {
		if err := o.cache.PutMany(ctx, fresh); err != nil {
			o.log.Warnf("geocode cache write failed: %v", err)
		}
	}

	out := make(map[string]domain.Coordinate, len(addresses))
	for _, a := range addresses {
		norm := Normalize(a)
		if c, ok := hits[norm]; ok {
			out[a] = c
			continue
		}
		out[a] = fresh[norm]
	}

	return out, nil
}

type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (o *ORSGeocoder) lookup(ctx context.Context, address string) (domain.Coordinate, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("size", "1")
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinate{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinate{}, errors.New("no geocode results")
	}

	// GeoJSON order is [lng, lat].
	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinate{}, errors.New("invalid coordinate format")
	}

	c := domain.Coordinate{Lat: coords[1], Lng: coords[0]}
	if !c.Valid() {
		return domain.Coordinate{}, fmt.Errorf("coordinate out of range: %v", coords)
	}
	return c, nil
}
