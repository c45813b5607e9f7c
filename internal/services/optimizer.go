package services

import (
	"context"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/platform/metrics"
	"driver-route-optimizer/internal/platform/obs"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoStops            = errors.New("no orders provided")
	ErrInvalidDriverCount = errors.New("invalid driver count")
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
	ErrInvalidParams      = errors.New("invalid route parameters")
)

// Optimizer runs the clustering, balancing and sequencing pipeline.
// It holds no per-request state and is safe for concurrent use.
type Optimizer struct {
	tuning Tuning
	log    logger.Logger
}

func NewOptimizer(t Tuning, log logger.Logger) *Optimizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Optimizer{tuning: t.WithDefaults(), log: log}
}

// Tuning returns the effective engine constants.
func (o *Optimizer) Tuning() Tuning { return o.tuning }

func (o *Optimizer) distanceKm(a, b domain.Coordinate) float64 {
	return haversine(a, b, o.tuning.EarthRadiusKm)
}

type OptimizeInput struct {
	Stops       []domain.Stop
	DriverCount int
	Depot       domain.Coordinate
	Params      domain.RouteParams
}

// ValidateInput rejects input the engine does not define results for.
// Callers run it before Optimize or Cluster.
func ValidateInput(stops []domain.Stop, driverCount int, depot *domain.Coordinate, params *domain.RouteParams) error {
	if len(stops) == 0 {
		return ErrNoStops
	}
	if driverCount < 1 {
		return ErrInvalidDriverCount
	}

	seen := make(map[string]struct{}, len(stops))
	for i, s := range stops {
		if !s.Location.Valid() {
			return fmt.Errorf("%w: order %q at index %d", ErrInvalidCoordinate, s.ID, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate order id %q", ErrInvalidParams, s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.ServiceMinutes != nil && *s.ServiceMinutes < 0 {
			return fmt.Errorf("%w: order %q has negative service time", ErrInvalidParams, s.ID)
		}
	}

	if depot != nil && !depot.Valid() {
		return fmt.Errorf("%w: depot", ErrInvalidCoordinate)
	}

	if params != nil {
		switch {
		case params.ServiceMinutes < 0:
			return fmt.Errorf("%w: serviceTime must be >= 0", ErrInvalidParams)
		case params.MaxWorkingHours < 0:
			return fmt.Errorf("%w: maxWorkingHours must be >= 0", ErrInvalidParams)
		case params.MaxStopsPerRoute < 0:
			return fmt.Errorf("%w: maxStopsPerRoute must be >= 0", ErrInvalidParams)
		case params.MaxTries < 0:
			return fmt.Errorf("%w: maxTries must be >= 0", ErrInvalidParams)
		}
	}
	return nil
}

// Optimize clusters the stops into DriverCount groups, balances them, and
// sequences every group independently. Groups are sequenced concurrently by
// up to SequenceWorkers goroutines; each touches only its own stops.
// The only error is ctx cancellation.
func (o *Optimizer) Optimize(ctx context.Context, in OptimizeInput) (_ domain.Plan, err error) {
	defer obs.Time(ctx, "optimize")(&err)

	groups := o.Cluster(in.Stops, in.DriverCount)
	groups = o.Balance(groups)

	routes := make([]domain.Route, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.tuning.SequenceWorkers)
	for i, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			ordered, passes := o.twoOpt(grp.Stops, in.Depot)
			o.log.Debugf("driver_%d sequenced: stops=%d passes=%d", i+1, len(ordered), passes)

			routes[i] = domain.Route{
				Driver:   fmt.Sprintf("driver_%d", i+1),
				Depot:    in.Depot,
				Centroid: grp.Centroid,
				Stops:    ordered,
				Stats:    o.Stats(ordered, in.Depot, in.Params.ServiceMinutes),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Plan{}, fmt.Errorf("optimize: sequence routes: %w", err)
	}

	plan := domain.Plan{
		ID:     uuid.NewString(),
		Depot:  in.Depot,
		Routes: routes,
	}
	for _, r := range routes {
		metrics.RouteStops.Observe(float64(len(r.Stops)))
		plan.Totals.Stops += len(r.Stops)
		plan.Totals.DistanceKm += r.Stats.DistanceKm
		plan.Totals.TravelMinutes += r.Stats.TravelMinutes
		plan.Totals.ServiceMinutes += r.Stats.ServiceMinutes
		plan.Totals.TotalMinutes += r.Stats.TotalMinutes
	}
	plan.Totals.DistanceKm = round2(plan.Totals.DistanceKm)
	plan.Totals.TotalHours = round2(float64(plan.Totals.TotalMinutes) / 60)

	o.log.Infof("optimized %d stops into %d routes (%.2f km)", plan.Totals.Stops, len(routes), plan.Totals.DistanceKm)
	return plan, nil
}
