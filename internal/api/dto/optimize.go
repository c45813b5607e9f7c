package dto

import (
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/services"
	"fmt"
)

type RouteParams struct {
	ServiceTime      float64 `json:"serviceTime" yaml:"serviceTime"`
	MaxWorkingHours  float64 `json:"maxWorkingHours" yaml:"maxWorkingHours"`
	MaxStopsPerRoute int     `json:"maxStopsPerRoute" yaml:"maxStopsPerRoute"`
	MaxTries         int     `json:"maxTries" yaml:"maxTries"`
}

func (p RouteParams) Domain() domain.RouteParams {
	return domain.RouteParams{
		ServiceMinutes:   p.ServiceTime,
		MaxWorkingHours:  p.MaxWorkingHours,
		MaxStopsPerRoute: p.MaxStopsPerRoute,
		MaxTries:         p.MaxTries,
	}
}

// Weights are accepted and echoed; the optimizer does not read them.
type Weights struct {
	Distance   float64 `json:"distance" yaml:"distance"`
	Time       float64 `json:"time" yaml:"time"`
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`
}

type OptimizeRequest struct {
	Orders      []Order     `json:"orders"`
	DriverCount int         `json:"driverCount"`
	Depot       *LatLng     `json:"depot,omitempty"`
	RouteParams RouteParams `json:"routeParams"`
	Weights     *Weights    `json:"weights,omitempty"`
}

type RouteStats struct {
	Distance       float64 `json:"distance" yaml:"distance"`
	TravelTime     int     `json:"travelTime" yaml:"travelTime"`
	ServiceTime    float64 `json:"serviceTime" yaml:"serviceTime"`
	TotalTime      int     `json:"totalTime" yaml:"totalTime"`
	TotalTimeHours float64 `json:"totalTimeHours" yaml:"totalTimeHours"`
}

type OptimizedRoute struct {
	Driver       string     `json:"driver" yaml:"driver"`
	Orders       []string   `json:"orders" yaml:"orders"`
	OrderDetails []Order    `json:"orderDetails" yaml:"orderDetails"`
	Stats        RouteStats `json:"stats" yaml:"stats"`
	Centroid     LatLng     `json:"centroid" yaml:"centroid"`
}

type RouteDetail struct {
	Driver        string  `json:"driver" yaml:"driver"`
	Stops         int     `json:"stops" yaml:"stops"`
	Value         float64 `json:"value" yaml:"value"`
	Weight        float64 `json:"weight" yaml:"weight"`
	WorkloadScore int     `json:"workloadScore" yaml:"workloadScore"`
	Efficiency    int     `json:"efficiency" yaml:"efficiency"`
	Status        string  `json:"status" yaml:"status"`
	Overtime      bool    `json:"overtime" yaml:"overtime"`
	OverStopLimit bool    `json:"overStopLimit" yaml:"overStopLimit"`
	Driving       string  `json:"driving" yaml:"driving"`
	Servicing     string  `json:"servicing" yaml:"servicing"`
	Total         string  `json:"total" yaml:"total"`
}

type Summary struct {
	TotalDistance  float64 `json:"totalDistance" yaml:"totalDistance"`
	TotalTime      int     `json:"totalTime" yaml:"totalTime"`
	TotalTimeHours float64 `json:"totalTimeHours" yaml:"totalTimeHours"`
	AvgScore       int     `json:"avgScore" yaml:"avgScore"`
	RoutesInTime   string  `json:"routesInTime" yaml:"routesInTime"`
	FuelCost       float64 `json:"fuelCost" yaml:"fuelCost"`
	DriverCost     float64 `json:"driverCost" yaml:"driverCost"`
	TotalCost      float64 `json:"totalCost" yaml:"totalCost"`
	Currency       string  `json:"currency" yaml:"currency"`
}

type WorkloadBalance struct {
	AvgWorkingHours  float64 `json:"avgWorkingHours" yaml:"avgWorkingHours"`
	MaxWorkingHours  float64 `json:"maxWorkingHours" yaml:"maxWorkingHours"`
	OverloadedRoutes int     `json:"overloadedRoutes" yaml:"overloadedRoutes"`
	BalanceScore     int     `json:"balanceScore" yaml:"balanceScore"`
}

type OptimizeResponse struct {
	PlanID          string           `json:"planId" yaml:"planId"`
	Depot           LatLng           `json:"depot" yaml:"depot"`
	Summary         Summary          `json:"summary" yaml:"summary"`
	WorkloadBalance WorkloadBalance  `json:"workloadBalance" yaml:"workloadBalance"`
	RouteDetails    []RouteDetail    `json:"routeDetails" yaml:"routeDetails"`
	Routes          []OptimizedRoute `json:"routes" yaml:"routes"`
	RouteParams     RouteParams      `json:"routeParams" yaml:"routeParams"`
	Weights         *Weights         `json:"weights,omitempty" yaml:"weights,omitempty"`
}

func DriverName(i int) string { return fmt.Sprintf("driver_%d", i+1) }

// NewOptimizeResponse flattens a plan and its report into the wire form.
func NewOptimizeResponse(plan domain.Plan, rep services.PlanReport, rates services.CostRates, params RouteParams, weights *Weights) OptimizeResponse {
	res := OptimizeResponse{
		PlanID: plan.ID,
		Depot:  FromCoordinate(plan.Depot),
		Summary: Summary{
			TotalDistance:  rep.TotalDistanceKm,
			TotalTime:      rep.TotalMinutes,
			TotalTimeHours: rep.TotalHours,
			AvgScore:       rep.AvgWorkloadScore,
			RoutesInTime:   fmt.Sprintf("%d/%d", rep.RoutesInTime, len(plan.Routes)),
			FuelCost:       rep.FuelCost,
			DriverCost:     rep.DriverCost,
			TotalCost:      rep.TotalCost,
			Currency:       rates.CurrencySymbol,
		},
		WorkloadBalance: WorkloadBalance{
			AvgWorkingHours:  rep.AvgWorkingHours,
			MaxWorkingHours:  rep.MaxWorkingHours,
			OverloadedRoutes: rep.OverloadedRoutes,
			BalanceScore:     rep.BalanceScore,
		},
		RouteDetails: make([]RouteDetail, 0, len(rep.Routes)),
		Routes:       make([]OptimizedRoute, 0, len(plan.Routes)),
		RouteParams:  params,
		Weights:      weights,
	}

	for _, r := range rep.Routes {
		res.RouteDetails = append(res.RouteDetails, RouteDetail{
			Driver:        r.Driver,
			Stops:         r.Stops,
			Value:         r.Value,
			Weight:        r.Weight,
			WorkloadScore: r.WorkloadScore,
			Efficiency:    r.Efficiency,
			Status:        r.Status,
			Overtime:      r.Overtime,
			OverStopLimit: r.OverStopLimit,
			Driving:       r.Driving,
			Servicing:     r.Servicing,
			Total:         r.Total,
		})
	}

	for _, r := range plan.Routes {
		res.Routes = append(res.Routes, OptimizedRoute{
			Driver:       r.Driver,
			Orders:       OrderIDs(r.Stops),
			OrderDetails: Orders(r.Stops),
			Stats: RouteStats{
				Distance:       r.Stats.DistanceKm,
				TravelTime:     r.Stats.TravelMinutes,
				ServiceTime:    r.Stats.ServiceMinutes,
				TotalTime:      r.Stats.TotalMinutes,
				TotalTimeHours: r.Stats.TotalHours,
			},
			Centroid: FromCoordinate(r.Centroid),
		})
	}
	return res
}
