package domain

// Derived travel and workload figures for one sequenced route.
// Values are recomputed from the route and never stored on their own.
type RouteStatistics struct {
	DistanceKm     float64
	TravelMinutes  int
	ServiceMinutes float64
	TotalMinutes   int
	TotalHours     float64
}

// Represents the planned route for a single driver.
// Stops are in visiting order; Depot is the implicit start and end point
// and is not part of Stops.
type Route struct {
	Driver   string
	Depot    Coordinate
	Centroid Coordinate
	Stops    []Stop
	Stats    RouteStatistics
}

// Aggregate figures across all routes of one optimization request.
type PlanTotals struct {
	Stops          int
	DistanceKm     float64
	TravelMinutes  int
	ServiceMinutes float64
	TotalMinutes   int
	TotalHours     float64
}

// Output of one optimization request.
// It is immutable planning data and contains no side effects.
type Plan struct {
	ID     string
	Depot  Coordinate
	Routes []Route
	Totals PlanTotals
}

// Caller-supplied knobs for reporting; the engine only reads ServiceMinutes.
type RouteParams struct {
	ServiceMinutes   float64
	MaxWorkingHours  float64
	MaxStopsPerRoute int
	MaxTries         int
}
