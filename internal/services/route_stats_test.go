package services

import (
	"driver-route-optimizer/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsSingleStopRoundTrip(t *testing.T) {
	o := newTestOptimizer()
	depot := domain.Coordinate{}
	route := []domain.Stop{stopAt("a", 1, 0)}

	got := o.Stats(route, depot, 0)

	assert.Equal(t, domain.RouteStatistics{
		DistanceKm:     222.39,
		TravelMinutes:  267,
		ServiceMinutes: 5,
		TotalMinutes:   272,
		TotalHours:     4.53,
	}, got)
}

func TestStatsServiceMinutes(t *testing.T) {
	o := newTestOptimizer()
	depot := domain.Coordinate{Lat: 51.5, Lng: -0.1}
	override := 12.0
	route := []domain.Stop{
		stopAt("a", 51.5, -0.1),
		stopAt("b", 51.5, -0.1),
		{ID: "c", Location: domain.Coordinate{Lat: 51.5, Lng: -0.1}, ServiceMinutes: &override},
	}

	got := o.Stats(route, depot, 8)

	assert.Zero(t, got.DistanceKm)
	assert.Zero(t, got.TravelMinutes)
	assert.Equal(t, 28.0, got.ServiceMinutes)
	assert.Equal(t, 28, got.TotalMinutes)
	assert.Equal(t, 0.47, got.TotalHours)
}

func TestStatsEmptyRoute(t *testing.T) {
	o := newTestOptimizer()
	assert.Equal(t, domain.RouteStatistics{}, o.Stats(nil, domain.Coordinate{}, 5))
}

func TestStatsUsesTunedSpeed(t *testing.T) {
	tun := DefaultTuning()
	tun.AverageSpeedKph = 100
	o := NewOptimizer(tun, nil)

	got := o.Stats([]domain.Stop{stopAt("a", 1, 0)}, domain.Coordinate{}, 5)
	assert.Equal(t, 133, got.TravelMinutes)
}
