package services

import (
	"math"

	"driver-route-optimizer/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by HaversineKm.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b in kilometers
// on the fixed EarthRadiusKm sphere. The Optimizer uses Tuning.EarthRadiusKm instead.
// Invalid input is not checked; NaN propagates.
func HaversineKm(a, b domain.Coordinate) float64 {
	return haversine(a, b, EarthRadiusKm)
}

func haversine(a, b domain.Coordinate, radiusKm float64) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return radiusKm * c
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// squaredPlanar is a cheap ordering proxy used only to compare candidates.
func squaredPlanar(a, b domain.Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}

// tourKm is the closed tour length depot -> stops... -> depot.
func tourKm(stops []domain.Stop, depot domain.Coordinate, dist func(a, b domain.Coordinate) float64) float64 {
	if len(stops) == 0 {
		return 0
	}
	total := dist(depot, stops[0].Location)
	for i := 0; i < len(stops)-1; i++ {
		total += dist(stops[i].Location, stops[i+1].Location)
	}
	total += dist(stops[len(stops)-1].Location, depot)
	return total
}
