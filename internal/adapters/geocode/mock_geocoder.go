package geocode

import (
	"context"
	"driver-route-optimizer/internal/domain"
	"errors"
	"hash/fnv"
	"math/rand"
)

// London, the default service area.
var DefaultMockBase = domain.Coordinate{Lat: 51.5074, Lng: -0.1278}

const DefaultMockSpread = 0.1

// MockGeocoder places every address at a pseudo-random point within
// ±Spread/2 degrees of Base. The point is derived from the address text,
// so the same address always lands in the same place.
type MockGeocoder struct {
	Base   domain.Coordinate
	Spread float64
}

func NewMockGeocoder(base domain.Coordinate, spread float64) *MockGeocoder {
	if spread <= 0 {
		spread = DefaultMockSpread
	}
	return &MockGeocoder{Base: base, Spread: spread}
}

func (m *MockGeocoder) Geocode(ctx context.Context, addresses []string) (map[string]domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]domain.Coordinate, len(addresses))
	for _, a := range addresses {
		norm := Normalize(a)
		if norm == "" {
			return nil, errors.New("mock geocode: address must be non-empty")
		}
		out[a] = m.locate(norm)
	}
	return out, nil
}

func (m *MockGeocoder) locate(address string) domain.Coordinate {
	h := fnv.New64a()
	_, _ = h.Write([]byte(address))
	r := rand.New(rand.NewSource(int64(h.Sum64())))

	return domain.Coordinate{
		Lat: m.Base.Lat + (r.Float64()-0.5)*m.Spread,
		Lng: m.Base.Lng + (r.Float64()-0.5)*m.Spread,
	}
}
