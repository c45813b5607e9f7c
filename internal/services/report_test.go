package services

import (
	"driver-route-optimizer/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportPlan() domain.Plan {
	v1, v2, w1 := 40.0, 60.0, 2.5
	return domain.Plan{
		Routes: []domain.Route{
			{
				Driver: "driver_1",
				Stops: []domain.Stop{
					{ID: "a", Value: &v1, Weight: &w1}, {ID: "b", Value: &v2}, {ID: "c"}, {ID: "d"},
				},
				Stats: domain.RouteStatistics{DistanceKm: 20, TravelMinutes: 24, ServiceMinutes: 20, TotalMinutes: 44, TotalHours: 0.73},
			},
			{
				Driver: "driver_2",
				Stops:  []domain.Stop{{ID: "e"}, {ID: "f"}},
				Stats:  domain.RouteStatistics{DistanceKm: 100, TravelMinutes: 120, ServiceMinutes: 10, TotalMinutes: 130, TotalHours: 2.17},
			},
		},
		Totals: domain.PlanTotals{Stops: 6},
	}
}

func TestBuildReport(t *testing.T) {
	rep := BuildReport(reportPlan(), domain.RouteParams{MaxWorkingHours: 2, MaxStopsPerRoute: 3}, DefaultCostRates())

	require.Len(t, rep.Routes, 2)

	r1 := rep.Routes[0]
	assert.Equal(t, "driver_1", r1.Driver)
	assert.Equal(t, 4, r1.Stops)
	assert.Equal(t, 100.0, r1.Value)
	assert.Equal(t, 2.5, r1.Weight)
	assert.Equal(t, 67, r1.WorkloadScore) // mean 3, |4-3|/3 = 33%
	assert.Equal(t, 55, r1.Efficiency)    // 4 / 0.73 * 10
	assert.False(t, r1.Overtime)
	assert.True(t, r1.OverStopLimit)
	assert.Equal(t, StatusOptimal, r1.Status)
	assert.Equal(t, "0h24m", r1.Driving)
	assert.Equal(t, "0h20m", r1.Servicing)
	assert.Equal(t, "0h44m", r1.Total)

	r2 := rep.Routes[1]
	assert.True(t, r2.Overtime)
	assert.False(t, r2.OverStopLimit)
	assert.Equal(t, StatusOverloaded, r2.Status)
	assert.Equal(t, "2h10m", r2.Total)

	assert.Equal(t, 120.0, rep.TotalDistanceKm)
	assert.Equal(t, 174, rep.TotalMinutes)
	assert.Equal(t, 2.9, rep.TotalHours)
	assert.Equal(t, 14.4, rep.FuelCost)
	assert.Equal(t, 43.5, rep.DriverCost)
	assert.Equal(t, 57.9, rep.TotalCost)
	assert.Equal(t, 67, rep.AvgWorkloadScore)
	assert.Equal(t, 67, rep.BalanceScore)
	assert.Equal(t, 1, rep.RoutesInTime)
	assert.Equal(t, 1, rep.OverloadedRoutes)
	assert.Equal(t, 1.45, rep.AvgWorkingHours)
	assert.Equal(t, 2.17, rep.MaxWorkingHours)
}

func TestBuildReportWithoutLimits(t *testing.T) {
	rep := BuildReport(reportPlan(), domain.RouteParams{}, DefaultCostRates())

	assert.Equal(t, 2, rep.RoutesInTime)
	assert.Zero(t, rep.OverloadedRoutes)
	for _, r := range rep.Routes {
		assert.False(t, r.Overtime)
		assert.False(t, r.OverStopLimit)
	}
}

func TestBuildReportEmptyPlan(t *testing.T) {
	rep := BuildReport(domain.Plan{}, domain.RouteParams{}, DefaultCostRates())
	assert.Empty(t, rep.Routes)
	assert.Zero(t, rep.TotalCost)
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0h00m", FormatMinutes(0))
	assert.Equal(t, "1h05m", FormatMinutes(65))
	assert.Equal(t, "2h00m", FormatMinutes(119.7))
	assert.Equal(t, "10h30m", FormatMinutes(630))
}
