package dto

import "driver-route-optimizer/internal/domain"

type ClusterRequest struct {
	Orders      []Order `json:"orders"`
	DriverCount int     `json:"driverCount"`
}

// ClusterRoute is one unordered group of orders.
type ClusterRoute struct {
	Driver       string   `json:"driver" yaml:"driver"`
	Orders       []string `json:"orders" yaml:"orders"`
	OrderDetails []Order  `json:"orderDetails" yaml:"orderDetails"`
	Centroid     LatLng   `json:"centroid" yaml:"centroid"`
}

type ClusterResponse struct {
	Routes []ClusterRoute `json:"routes" yaml:"routes"`
}

func NewClusterResponse(groups []domain.Group) ClusterResponse {
	res := ClusterResponse{Routes: make([]ClusterRoute, 0, len(groups))}
	for i, g := range groups {
		res.Routes = append(res.Routes, ClusterRoute{
			Driver:       DriverName(i),
			Orders:       OrderIDs(g.Stops),
			OrderDetails: Orders(g.Stops),
			Centroid:     FromCoordinate(g.Centroid),
		})
	}
	return res
}
