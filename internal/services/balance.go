package services

import (
	"driver-route-optimizer/internal/domain"
	"math"
)

// Balance moves stops from over-full groups to under-full groups so that
// group sizes approach the band [lower*mean, upper*mean].
//
// The pass is greedy: bound membership is evaluated once per outer iteration,
// each over-bound group feeds its nearest eligible under-bound group (by
// centroid distance) with its stop closest to that group's centroid, and
// centroids are kept fixed as reference anchors throughout.
// The input is not mutated; a new snapshot is returned. Some groups may still
// be out of bounds when no further move is possible.
func (o *Optimizer) Balance(groups []domain.Group) []domain.Group {
	out := domain.CloneGroups(groups)
	if len(out) == 0 {
		return out
	}

	total := 0
	for _, g := range out {
		total += g.Len()
	}
	mean := float64(total) / float64(len(out))
	lower := mean * o.tuning.BalanceLowerRatio
	upper := mean * o.tuning.BalanceUpperRatio

	for it := 0; it < o.tuning.BalanceMaxIterations; it++ {
		var over, under []int
		for i, g := range out {
			n := float64(g.Len())
			if n > upper {
				over = append(over, i)
			}
			if n < lower {
				under = append(under, i)
			}
		}
		if len(over) == 0 || len(under) == 0 {
			break
		}

		moves := 0
		for _, oi := range over {
			for float64(out[oi].Len()) > upper {
				target := o.nearestUnderfull(out, oi, under, upper)
				if target < 0 {
					break
				}

				si := o.nearestStop(out[oi].Stops, out[target].Centroid)
				if si < 0 {
					break
				}

				moved := out[oi].Stops[si]
				out[oi].Stops = append(out[oi].Stops[:si], out[oi].Stops[si+1:]...)
				out[target].Stops = append(out[target].Stops, moved)
				moves++
			}
		}
		o.log.Debugf("balance iteration %d: over=%d under=%d moves=%d", it+1, len(over), len(under), moves)
	}

	return out
}

// nearestUnderfull returns the index of the under-bound group whose centroid is
// nearest to groups[from], skipping groups already at or above upper. -1 if none.
func (o *Optimizer) nearestUnderfull(groups []domain.Group, from int, under []int, upper float64) int {
	best := -1
	bestDist := math.Inf(1)
	for _, ui := range under {
		if float64(groups[ui].Len()) >= upper {
			continue
		}
		if d := o.distanceKm(groups[from].Centroid, groups[ui].Centroid); d < bestDist {
			bestDist = d
			best = ui
		}
	}
	return best
}

// nearestStop returns the index of the stop closest to c, or -1.
func (o *Optimizer) nearestStop(stops []domain.Stop, c domain.Coordinate) int {
	best := -1
	bestDist := math.Inf(1)
	for i, s := range stops {
		if d := o.distanceKm(s.Location, c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
