package domain

// A cluster of stops assigned to one driver.
// Centroid is derived from Stops; member order carries no meaning.
type Group struct {
	Centroid Coordinate
	Stops    []Stop
}

// Len returns the number of member stops.
func (g Group) Len() int { return len(g.Stops) }

// Clone returns a copy whose Stops slice does not alias g.
func (g Group) Clone() Group {
	stops := make([]Stop, len(g.Stops))
	copy(stops, g.Stops)
	return Group{Centroid: g.Centroid, Stops: stops}
}

// CloneGroups deep-copies a group snapshot.
func CloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}
