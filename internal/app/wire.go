// Package app builds the concrete adapters selected by configuration.
// Both the HTTP server and the CLI compose themselves from here.
package app

import (
	"database/sql"
	"driver-route-optimizer/internal/adapters/cache"
	"driver-route-optimizer/internal/adapters/geocode"
	"driver-route-optimizer/internal/adapters/repositories"
	"driver-route-optimizer/internal/config"
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/platform/db"
	"driver-route-optimizer/internal/platform/logger"
	"driver-route-optimizer/internal/ports"
	"fmt"
)

// OpenStore opens the configured database and makes sure the schema exists.
func OpenStore(cfg config.DatabaseConfig) (*sql.DB, repositories.Dialect, error) {
	dialect, err := repositories.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}

	var conn *sql.DB
	if dialect == repositories.DialectPostgres {
		conn, err = db.Open(cfg.URL)
	} else {
		conn, err = db.OpenSQLite(cfg.Path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}

	if err := repositories.InitSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, "", fmt.Errorf("open store: %w", err)
	}
	return conn, dialect, nil
}

// GeocodeCache returns the address cache matching the database dialect.
func GeocodeCache(conn *sql.DB, dialect repositories.Dialect) geocode.Cache {
	if conn == nil {
		return nil
	}
	if dialect == repositories.DialectPostgres {
		return cache.NewSQLGeocodeCache(conn)
	}
	return cache.NewSqliteGeocodeCache(conn)
}

// NewGeocoder builds the mock or OpenRouteService geocoder. addrCache may be nil.
func NewGeocoder(cfg config.GeocoderConfig, addrCache geocode.Cache, log logger.Logger) (ports.Geocoder, error) {
	switch cfg.Kind {
	case "", "mock":
		base := domain.Coordinate{Lat: cfg.MockLat, Lng: cfg.MockLng}
		if base == (domain.Coordinate{}) {
			base = geocode.DefaultMockBase
		}
		return geocode.NewMockGeocoder(base, cfg.Spread), nil
	case "ors":
		g, err := geocode.NewORSGeocoder(geocode.ORSConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Country: cfg.Country,
			RPS:     cfg.RPS,
		}, addrCache, log)
		if err != nil {
			return nil, fmt.Errorf("new geocoder: %w", err)
		}
		return g, nil
	}
	return nil, fmt.Errorf("new geocoder: unknown kind %q", cfg.Kind)
}
