package services

import (
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestOptimizer() *Optimizer {
	return NewOptimizer(DefaultTuning(), logger.Nop())
}

func stopAt(id string, lat, lng float64) domain.Stop {
	return domain.Stop{ID: id, Address: id, Location: domain.Coordinate{Lat: lat, Lng: lng}}
}

// randomStops scatters n stops around London with a fixed seed.
func randomStops(seed int64, n int) []domain.Stop {
	rng := rand.New(rand.NewSource(seed))
	stops := make([]domain.Stop, n)
	for i := range stops {
		stops[i] = stopAt(fmt.Sprintf("s%d", i), 51.5+rng.Float64()*0.2-0.1, -0.12+rng.Float64()*0.3-0.15)
	}
	return stops
}

func stopIDs(stops []domain.Stop) []string {
	ids := make([]string, len(stops))
	for i, s := range stops {
		ids[i] = s.ID
	}
	return ids
}

// requirePartition asserts that groups contain every input stop exactly once.
func requirePartition(t *testing.T, input []domain.Stop, groups []domain.Group) {
	t.Helper()
	var got []string
	for _, g := range groups {
		got = append(got, stopIDs(g.Stops)...)
	}
	want := stopIDs(input)
	sort.Strings(got)
	sort.Strings(want)
	require.Equal(t, want, got)
}

func groupSizes(groups []domain.Group) []int {
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = g.Len()
	}
	return sizes
}

func spread(groups []domain.Group) int {
	sizes := groupSizes(groups)
	lo, hi := sizes[0], sizes[0]
	for _, n := range sizes[1:] {
		lo = min(lo, n)
		hi = max(hi, n)
	}
	return hi - lo
}
