package services

import (
	"driver-route-optimizer/internal/domain"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CostRates are the unit costs used for plan cost estimates.
type CostRates struct {
	FuelPerKm      float64 `koanf:"fuel_per_km"`
	DriverPerHour  float64 `koanf:"driver_per_hour"`
	CurrencySymbol string  `koanf:"currency_symbol"`
}

func DefaultCostRates() CostRates {
	return CostRates{FuelPerKm: 0.12, DriverPerHour: 15, CurrencySymbol: "£"}
}

const (
	StatusOptimal    = "Optimal"
	StatusOverloaded = "Overloaded"
)

// RouteReport is the presentation-side view of one route.
type RouteReport struct {
	Driver         string
	Stops          int
	DistanceKm     float64
	TravelMinutes  int
	ServiceMinutes float64
	TotalMinutes   int
	TotalHours     float64
	Value          float64
	Weight         float64
	WorkloadScore  int
	Efficiency     int
	Overtime       bool
	OverStopLimit  bool
	Status         string
	Driving        string
	Servicing      string
	Total          string
}

// PlanReport aggregates cost, workload and balance figures across routes.
type PlanReport struct {
	Routes []RouteReport

	TotalDistanceKm float64
	TotalMinutes    int
	TotalHours      float64
	FuelCost        float64
	DriverCost      float64
	TotalCost       float64

	AvgWorkloadScore int
	BalanceScore     int
	RoutesInTime     int
	OverloadedRoutes int
	AvgWorkingHours  float64
	MaxWorkingHours  float64
}

// BuildReport derives cost breakdowns, workload scores and overload flags
// from an optimized plan. It is pure arithmetic over plan.
func BuildReport(plan domain.Plan, params domain.RouteParams, rates CostRates) PlanReport {
	rep := PlanReport{Routes: make([]RouteReport, 0, len(plan.Routes))}
	drivers := len(plan.Routes)
	if drivers == 0 {
		return rep
	}

	mean := float64(plan.Totals.Stops) / float64(drivers)
	maxMinutes := params.MaxWorkingHours * 60

	distances := make([]float64, drivers)
	hours := make([]float64, drivers)
	scores := make([]float64, drivers)
	deviations := make([]float64, drivers)

	for i, r := range plan.Routes {
		n := len(r.Stops)
		score := workloadScore(n, mean)

		rr := RouteReport{
			Driver:         r.Driver,
			Stops:          n,
			DistanceKm:     r.Stats.DistanceKm,
			TravelMinutes:  r.Stats.TravelMinutes,
			ServiceMinutes: r.Stats.ServiceMinutes,
			TotalMinutes:   r.Stats.TotalMinutes,
			TotalHours:     r.Stats.TotalHours,
			WorkloadScore:  score,
			Overtime:       params.MaxWorkingHours > 0 && r.Stats.TotalHours > params.MaxWorkingHours,
			OverStopLimit:  params.MaxStopsPerRoute > 0 && n > params.MaxStopsPerRoute,
			Status:         StatusOptimal,
			Driving:        FormatMinutes(float64(r.Stats.TravelMinutes)),
			Servicing:      FormatMinutes(r.Stats.ServiceMinutes),
			Total:          FormatMinutes(float64(r.Stats.TotalMinutes)),
		}
		if r.Stats.TotalHours > 0 {
			rr.Efficiency = int(math.Round(float64(n) / r.Stats.TotalHours * 10))
		}
		if rr.Overtime {
			rr.Status = StatusOverloaded
			rep.OverloadedRoutes++
		}
		if maxMinutes <= 0 || float64(r.Stats.TotalMinutes) <= maxMinutes {
			rep.RoutesInTime++
		}
		for _, s := range r.Stops {
			rr.Value += s.ValueOrZero()
			rr.Weight += s.WeightOrZero()
		}

		rep.Routes = append(rep.Routes, rr)
		rep.TotalMinutes += r.Stats.TotalMinutes

		distances[i] = r.Stats.DistanceKm
		hours[i] = r.Stats.TotalHours
		scores[i] = rawWorkloadScore(n, mean)
		deviations[i] = math.Abs(float64(n) - mean)
	}

	rep.TotalDistanceKm = round2(floats.Sum(distances))
	rep.TotalHours = round2(float64(rep.TotalMinutes) / 60)
	rep.FuelCost = round2(rep.TotalDistanceKm * rates.FuelPerKm)
	rep.DriverCost = round2(float64(rep.TotalMinutes) / 60 * rates.DriverPerHour)
	rep.TotalCost = round2(rep.FuelCost + rep.DriverCost)

	rep.AvgWorkloadScore = int(math.Round(stat.Mean(scores, nil)))
	rep.AvgWorkingHours = round2(float64(rep.TotalMinutes) / float64(drivers) / 60)
	rep.MaxWorkingHours = floats.Max(hours)
	if mean > 0 {
		rep.BalanceScore = max(0, int(math.Round(100-floats.Max(deviations)/mean*100)))
	}

	return rep
}

// rawWorkloadScore is 100 minus the percentage deviation from the mean stop count.
func rawWorkloadScore(n int, mean float64) float64 {
	if mean <= 0 {
		return 100
	}
	return 100 - math.Abs(float64(n)-mean)/mean*100
}

func workloadScore(n int, mean float64) int {
	return max(0, int(math.Round(rawWorkloadScore(n, mean))))
}

// FormatMinutes renders minutes as "XhYYm".
func FormatMinutes(minutes float64) string {
	h := int(math.Floor(minutes / 60))
	m := int(math.Round(math.Mod(minutes, 60)))
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
