package dto

import "driver-route-optimizer/internal/domain"

type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func (l LatLng) Coordinate() domain.Coordinate { return domain.Coordinate{Lat: l.Lat, Lng: l.Lng} }

func FromCoordinate(c domain.Coordinate) LatLng { return LatLng{Lat: c.Lat, Lng: c.Lng} }

// Order is the wire form of a stop.
type Order struct {
	ID          string   `json:"id" yaml:"id"`
	Address     string   `json:"address" yaml:"address"`
	Lat         float64  `json:"lat" yaml:"lat"`
	Lng         float64  `json:"lng" yaml:"lng"`
	Value       *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Weight      *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	ServiceTime *float64 `json:"serviceTime,omitempty" yaml:"serviceTime,omitempty"`
}

func (o Order) Stop() domain.Stop {
	return domain.Stop{
		ID:             o.ID,
		Address:        o.Address,
		Location:       domain.Coordinate{Lat: o.Lat, Lng: o.Lng},
		Value:          o.Value,
		Weight:         o.Weight,
		ServiceMinutes: o.ServiceTime,
	}
}

func FromStop(s domain.Stop) Order {
	return Order{
		ID:          s.ID,
		Address:     s.Address,
		Lat:         s.Location.Lat,
		Lng:         s.Location.Lng,
		Value:       s.Value,
		Weight:      s.Weight,
		ServiceTime: s.ServiceMinutes,
	}
}

func Stops(orders []Order) []domain.Stop {
	out := make([]domain.Stop, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Stop())
	}
	return out
}

func Orders(stops []domain.Stop) []Order {
	out := make([]Order, 0, len(stops))
	for _, s := range stops {
		out = append(out, FromStop(s))
	}
	return out
}

func OrderIDs(stops []domain.Stop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.ID)
	}
	return out
}

type OrdersResponse struct {
	Orders []Order `json:"orders" yaml:"orders"`
}

type GeocodeRequest struct {
	Addresses []string `json:"addresses"`
}
