package services

import (
	"driver-route-optimizer/internal/domain"
	"math"
)

// Stats derives distance and time figures for a sequenced route.
//
// Travel time assumes AverageSpeedKph. Service time is the sum of each stop's
// own ServiceMinutes, falling back to serviceMinutes (or the tuned default when
// serviceMinutes <= 0). Distance and hours are rounded to two decimals,
// minutes to whole numbers.
func (o *Optimizer) Stats(route []domain.Stop, depot domain.Coordinate, serviceMinutes float64) domain.RouteStatistics {
	if serviceMinutes <= 0 {
		serviceMinutes = o.tuning.DefaultServiceMinutes
	}

	distance := o.RouteDistanceKm(route, depot)
	travel := distance / o.tuning.AverageSpeedKph * 60

	service := 0.0
	for _, s := range route {
		service += s.ServiceMinutesOr(serviceMinutes)
	}
	total := travel + service

	return domain.RouteStatistics{
		DistanceKm:     round2(distance),
		TravelMinutes:  int(math.Round(travel)),
		ServiceMinutes: service,
		TotalMinutes:   int(math.Round(total)),
		TotalHours:     round2(total / 60),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
