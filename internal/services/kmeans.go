package services

import (
	"math"

	"driver-route-optimizer/internal/domain"
)

// Cluster partitions stops into k geographic groups using k-means.
//
// Seeding is deterministic: group i starts at the stop with index
// min(i*floor(N/k), N-1), so identical input always yields identical groups.
// Each iteration builds a fresh snapshot of groups from the previous
// iteration's centroids; empty groups keep their previous centroid.
// Iteration stops once no centroid moves more than ClusterToleranceKm, or
// after ClusterMaxIterations.
//
// k < 1 returns nil. With no stops, k empty groups at the zero coordinate are returned.
func (o *Optimizer) Cluster(stops []domain.Stop, k int) []domain.Group {
	if k < 1 {
		return nil
	}

	centroids := seedCentroids(stops, k)
	groups := emptyGroups(centroids)
	if len(stops) == 0 {
		return groups
	}

	for it := 0; it < o.tuning.ClusterMaxIterations; it++ {
		groups = assignToNearest(stops, centroids)

		next, moved := o.recenter(groups, centroids)
		for i := range groups {
			groups[i].Centroid = next[i]
		}
		centroids = next

		if moved < o.tuning.ClusterToleranceKm {
			o.log.Debugf("kmeans converged after %d iterations (k=%d, stops=%d)", it+1, k, len(stops))
			break
		}
	}

	return groups
}

func seedCentroids(stops []domain.Stop, k int) []domain.Coordinate {
	centroids := make([]domain.Coordinate, k)
	n := len(stops)
	if n == 0 {
		return centroids
	}

	step := n / k
	for i := 0; i < k; i++ {
		idx := min(i*step, n-1)
		centroids[i] = stops[idx].Location
	}
	return centroids
}

func emptyGroups(centroids []domain.Coordinate) []domain.Group {
	groups := make([]domain.Group, len(centroids))
	for i, c := range centroids {
		groups[i] = domain.Group{Centroid: c, Stops: []domain.Stop{}}
	}
	return groups
}

// assignToNearest returns a new snapshot with every stop placed in the group
// whose centroid is nearest by squared planar distance. Ties go to the lowest index.
func assignToNearest(stops []domain.Stop, centroids []domain.Coordinate) []domain.Group {
	groups := emptyGroups(centroids)
	for _, s := range stops {
		best := 0
		bestDist := math.Inf(1)
		for ci := range centroids {
			if d := squaredPlanar(s.Location, centroids[ci]); d < bestDist {
				bestDist = d
				best = ci
			}
		}
		groups[best].Stops = append(groups[best].Stops, s)
	}
	return groups
}

// recenter computes the mean coordinate of every non-empty group and the
// largest haversine displacement from prev.
func (o *Optimizer) recenter(groups []domain.Group, prev []domain.Coordinate) ([]domain.Coordinate, float64) {
	next := make([]domain.Coordinate, len(prev))
	copy(next, prev)

	maxMove := 0.0
	for i, g := range groups {
		if len(g.Stops) == 0 {
			continue
		}

		var sumLat, sumLng float64
		for _, s := range g.Stops {
			sumLat += s.Location.Lat
			sumLng += s.Location.Lng
		}
		n := float64(len(g.Stops))
		next[i] = domain.Coordinate{Lat: sumLat / n, Lng: sumLng / n}

		if moved := o.distanceKm(prev[i], next[i]); moved > maxMove {
			maxMove = moved
		}
	}
	return next, maxMove
}
