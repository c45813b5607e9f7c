package main

import (
	"context"
	"driver-route-optimizer/internal/adapters/cache"
	"driver-route-optimizer/internal/adapters/repositories"
	"driver-route-optimizer/internal/api"
	"driver-route-optimizer/internal/app"
	"driver-route-optimizer/internal/config"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/platform/obs"
	"driver-route-optimizer/internal/ports"
	"driver-route-optimizer/internal/services"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, geocoder, Redis) behind ports and starts the HTTP server.
func main() {
	log := logger.New("server")
	if err := run(log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	if err := godotenv.Load(); err != nil {
		log.Infof("no .env file found (using environment variables)")
	}

	cfgPath := flag.String("config", config.Get("ROUTEOPT_CONFIG", ""), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	obs.SetLogger(logger.New("obs"))

	conn, dialect, err := app.OpenStore(cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Seed demo data on startup for local runs.
	if cfg.Database.SeedPath != "" {
		if err := repositories.SeedFromJSON(conn, dialect, cfg.Database.SeedPath); err != nil {
			log.Warnf("seed skipped: %v", err)
		}
	}

	geocoder, err := app.NewGeocoder(cfg.Geocoder, app.GeocodeCache(conn, dialect), logger.New("geocoder"))
	if err != nil {
		return err
	}

	var planCache ports.PlanCache
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisPlanCacheFromURL(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		cancel()
		if err != nil {
			log.Warnf("plan cache disabled: %v", err)
		} else {
			defer rc.Close()
			planCache = rc
		}
	}

	router := api.NewRouter(api.Deps{
		Stops:          repositories.NewSQLStopRepository(conn),
		Geocoder:       geocoder,
		Optimizer:      services.NewOptimizer(cfg.Tuning, logger.New("optimizer")),
		Cache:          planCache,
		Depot:          cfg.Depot.Coordinate(),
		Rates:          cfg.Costs,
		Log:            logger.New("http"),
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MaxDrivers:     cfg.Server.MaxDrivers,
	})

	// Write timeout is sized for cold-cache geocoding of large uploads.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening addr=%s db=%s geocoder=%s", srv.Addr, dialect, cfg.Geocoder.Kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
