package domain

// Represents a single delivery location handled by one driver.
// A Stop is created once per optimization request; the engine only moves it
// between groups and never rewrites its fields.
type Stop struct {
	ID       string
	Address  string
	Location Coordinate

	// Optional economic attributes. Nil means "not supplied".
	Value          *float64
	Weight         *float64
	ServiceMinutes *float64
}

func (s Stop) ValueOrZero() float64 {
	if s.Value == nil {
		return 0
	}
	return *s.Value
}

func (s Stop) WeightOrZero() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}

// ServiceMinutesOr returns the per-stop override, or fallback when none is set.
func (s Stop) ServiceMinutesOr(fallback float64) float64 {
	if s.ServiceMinutes == nil {
		return fallback
	}
	return *s.ServiceMinutes
}
