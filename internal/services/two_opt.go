package services

import (
	"driver-route-optimizer/internal/domain"
)

// Sequence orders stops to approximately minimise the closed tour
// depot -> stops -> depot using first-improvement 2-opt.
//
// Every pair (i, k) with i < k is tried by reversing stops[i..k]; a candidate
// is accepted as soon as it is strictly shorter and scanning continues on the
// updated route. Passes repeat until one finds no improvement or
// TwoOptMaxPasses is reached. Routes of two stops or fewer are returned as given.
// The input slice is never modified.
func (o *Optimizer) Sequence(stops []domain.Stop, depot domain.Coordinate) []domain.Stop {
	route, _ := o.twoOpt(stops, depot)
	return route
}

func (o *Optimizer) twoOpt(stops []domain.Stop, depot domain.Coordinate) ([]domain.Stop, int) {
	route := make([]domain.Stop, len(stops))
	copy(route, stops)
	if len(route) <= 2 {
		return route, 0
	}

	passes := 0
	for improved := true; improved && passes < o.tuning.TwoOptMaxPasses; {
		improved = false
		passes++

		for i := 0; i < len(route)-1; i++ {
			for k := i + 1; k < len(route); k++ {
				candidate := twoOptSwap(route, i, k)
				if o.RouteDistanceKm(candidate, depot) < o.RouteDistanceKm(route, depot) {
					route = candidate
					improved = true
				}
			}
		}
	}
	return route, passes
}

// twoOptSwap returns a copy of route with positions i..k (inclusive) reversed.
func twoOptSwap(route []domain.Stop, i, k int) []domain.Stop {
	out := make([]domain.Stop, len(route))
	copy(out, route[:i])
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = route[j]
		pos++
	}
	copy(out[pos:], route[k+1:])
	return out
}

// RouteDistanceKm is the closed tour length depot -> stops -> depot.
func (o *Optimizer) RouteDistanceKm(stops []domain.Stop, depot domain.Coordinate) float64 {
	return tourKm(stops, depot, o.distanceKm)
}
