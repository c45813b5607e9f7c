package main

import (
	"context"
	"driver-route-optimizer/internal/api/dto"
	"driver-route-optimizer/internal/app"
	"driver-route-optimizer/internal/config"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/services"
	"driver-route-optimizer/internal/upload"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

type inputOptions struct {
	file    string
	drivers int
}

func (in *inputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "stops file: .json orders, CSV with header, or one address per line")
	cmd.Flags().IntVarP(&in.drivers, "drivers", "d", 3, "number of drivers")
	_ = cmd.MarkFlagRequired("file")
}

func newOptimizeCmd(root *rootOptions) *cobra.Command {
	in := &inputOptions{}
	var (
		depotLat, depotLng float64
		params             dto.RouteParams
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Build balanced, sequenced routes with a cost and workload report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			stops, err := loadStops(cmd.Context(), cfg, in.file)
			if err != nil {
				return err
			}

			depot := cfg.Depot.Coordinate()
			if cmd.Flags().Changed("depot-lat") {
				depot.Lat = depotLat
			}
			if cmd.Flags().Changed("depot-lng") {
				depot.Lng = depotLng
			}
			p := params.Domain()
			if err := services.ValidateInput(stops, in.drivers, &depot, &p); err != nil {
				return err
			}

			opt := services.NewOptimizer(cfg.Tuning, logger.Nop())
			plan, err := opt.Optimize(cmd.Context(), services.OptimizeInput{
				Stops:       stops,
				DriverCount: in.drivers,
				Depot:       depot,
				Params:      p,
			})
			if err != nil {
				return err
			}

			rep := services.BuildReport(plan, p, cfg.Costs)
			return root.write(cmd.OutOrStdout(), dto.NewOptimizeResponse(plan, rep, cfg.Costs, params, nil))
		},
	}
	in.bind(cmd)
	cmd.Flags().Float64Var(&depotLat, "depot-lat", 0, "depot latitude (default from config)")
	cmd.Flags().Float64Var(&depotLng, "depot-lng", 0, "depot longitude (default from config)")
	cmd.Flags().Float64Var(&params.ServiceTime, "service-time", 5, "minutes spent at each stop")
	cmd.Flags().Float64Var(&params.MaxWorkingHours, "max-hours", 8, "working hours before a route counts as overtime")
	cmd.Flags().IntVar(&params.MaxStopsPerRoute, "max-stops", 0, "stops per route before it is flagged (0 = no limit)")
	return cmd
}

func newClusterCmd(root *rootOptions) *cobra.Command {
	in := &inputOptions{}

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group stops by location without balancing or sequencing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			stops, err := loadStops(cmd.Context(), cfg, in.file)
			if err != nil {
				return err
			}
			if err := services.ValidateInput(stops, in.drivers, nil, nil); err != nil {
				return err
			}

			groups := services.NewOptimizer(cfg.Tuning, logger.Nop()).Cluster(stops, in.drivers)
			return root.write(cmd.OutOrStdout(), dto.NewClusterResponse(groups))
		},
	}
	in.bind(cmd)
	return cmd
}

func newGeocodeCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "geocode [address...]",
		Short: "Resolve addresses to coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			addresses := make([]string, 0, len(args))
			for _, a := range args {
				if a = strings.TrimSpace(a); a != "" {
					addresses = append(addresses, a)
				}
			}
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				parsed, err := upload.Parse(f)
				if err != nil {
					return err
				}
				addresses = append(addresses, parsed.Addresses...)
				for _, s := range parsed.Stops {
					addresses = append(addresses, s.Address)
				}
			}
			if len(addresses) == 0 {
				return errors.New("no addresses given")
			}

			stops, err := geocodeAll(cmd.Context(), cfg, addresses, 0)
			if err != nil {
				return err
			}
			return root.write(cmd.OutOrStdout(), dto.OrdersResponse{Orders: dto.Orders(stops)})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "address file (CSV or one address per line)")
	return cmd
}

// loadStops reads stops from a JSON orders file or an upload-style CSV/text
// file, geocoding any rows that lack coordinates.
func loadStops(ctx context.Context, cfg *config.Config, path string) ([]domain.Stop, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var orders []dto.Order
		if err := json.NewDecoder(f).Decode(&orders); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return dto.Stops(orders), nil
	}

	parsed, err := upload.Parse(f)
	if err != nil {
		return nil, err
	}
	stops := parsed.Stops
	if len(parsed.Addresses) > 0 {
		geocoded, err := geocodeAll(ctx, cfg, parsed.Addresses, len(stops))
		if err != nil {
			return nil, err
		}
		stops = append(stops, geocoded...)
	}
	return stops, nil
}

func geocodeAll(ctx context.Context, cfg *config.Config, addresses []string, offset int) ([]domain.Stop, error) {
	g, err := app.NewGeocoder(cfg.Geocoder, nil, logger.New("geocoder"))
	if err != nil {
		return nil, err
	}
	coords, err := g.Geocode(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}

	stops := make([]domain.Stop, 0, len(addresses))
	for i, a := range addresses {
		c, ok := coords[a]
		if !ok {
			return nil, fmt.Errorf("geocode: no coordinate for %q", a)
		}
		stops = append(stops, domain.Stop{ID: fmt.Sprintf("order_%d", offset+i+1), Address: a, Location: c})
	}
	return stops, nil
}
