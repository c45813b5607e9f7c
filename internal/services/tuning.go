package services

// Tuning holds every constant the optimization engine depends on.
// Zero values are replaced by the defaults in DefaultTuning.
type Tuning struct {
	EarthRadiusKm float64 `koanf:"earth_radius_km"`

	ClusterMaxIterations  int     `koanf:"cluster_max_iterations"`
	ClusterToleranceKm    float64 `koanf:"cluster_tolerance_km"`
	BalanceMaxIterations  int     `koanf:"balance_max_iterations"`
	BalanceLowerRatio     float64 `koanf:"balance_lower_ratio"`
	BalanceUpperRatio     float64 `koanf:"balance_upper_ratio"`
	TwoOptMaxPasses       int     `koanf:"two_opt_max_passes"`
	AverageSpeedKph       float64 `koanf:"average_speed_kph"`
	DefaultServiceMinutes float64 `koanf:"default_service_minutes"`
	SequenceWorkers       int     `koanf:"sequence_workers"`
}

// DefaultTuning returns the production constants.
func DefaultTuning() Tuning {
	return Tuning{
		EarthRadiusKm:         EarthRadiusKm,
		ClusterMaxIterations:  50,
		ClusterToleranceKm:    0.0001,
		BalanceMaxIterations:  10,
		BalanceLowerRatio:     0.7,
		BalanceUpperRatio:     1.3,
		TwoOptMaxPasses:       100,
		AverageSpeedKph:       50,
		DefaultServiceMinutes: 5,
		SequenceWorkers:       4,
	}
}

// WithDefaults fills unset fields from DefaultTuning.
func (t Tuning) WithDefaults() Tuning {
	d := DefaultTuning()
	if t.EarthRadiusKm <= 0 {
		t.EarthRadiusKm = d.EarthRadiusKm
	}
	if t.ClusterMaxIterations <= 0 {
		t.ClusterMaxIterations = d.ClusterMaxIterations
	}
	if t.ClusterToleranceKm <= 0 {
		t.ClusterToleranceKm = d.ClusterToleranceKm
	}
	if t.BalanceMaxIterations <= 0 {
		t.BalanceMaxIterations = d.BalanceMaxIterations
	}
	if t.BalanceLowerRatio <= 0 {
		t.BalanceLowerRatio = d.BalanceLowerRatio
	}
	if t.BalanceUpperRatio <= 0 {
		t.BalanceUpperRatio = d.BalanceUpperRatio
	}
	if t.TwoOptMaxPasses <= 0 {
		t.TwoOptMaxPasses = d.TwoOptMaxPasses
	}
	if t.AverageSpeedKph <= 0 {
		t.AverageSpeedKph = d.AverageSpeedKph
	}
	if t.DefaultServiceMinutes <= 0 {
		t.DefaultServiceMinutes = d.DefaultServiceMinutes
	}
	if t.SequenceWorkers <= 0 {
		t.SequenceWorkers = d.SequenceWorkers
	}
	return t
}
