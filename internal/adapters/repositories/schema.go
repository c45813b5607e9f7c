package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the database schema. Statements are valid for both SQLite and Postgres.
func InitSchema(db *sql.DB, d Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS stops (
		stop_id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		value DOUBLE PRECISION,
		weight DOUBLE PRECISION,
		service_minutes DOUBLE PRECISION
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lng DOUBLE PRECISION NOT NULL
    );
	`

	statements := []string{
		createStopsQuery,
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema (%s): exec statement #%d: %w", d, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StopSeed struct {
	ID             string   `json:"id"`
	Address        string   `json:"address"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Value          *float64 `json:"value,omitempty"`
	Weight         *float64 `json:"weight,omitempty"`
	ServiceMinutes *float64 `json:"service_minutes,omitempty"`
}

// Populate the database with stop data from a JSON file.
func SeedFromJSON(db *sql.DB, d Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed stops: read %q: %w", jsonPath, err)
	}

	var data []StopSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed stops: parse json: %w", err)
	}

	return SeedStops(db, d, data)
}

// SeedStops upserts the given stops.
func SeedStops(db *sql.DB, d Dialect, data []StopSeed) error {
	if db == nil {
		return errors.New("seed stops: DB is nil")
	}

	rows := make([]StopSeed, 0, len(data))
	for i, item := range data {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return fmt.Errorf("seed stops: item at index %d: id cannot be empty", i+1)
		}

		item.Address = strings.TrimSpace(item.Address)
		if item.Address == "" {
			return fmt.Errorf("seed stops: item at index %d: address cannot be empty", i+1)
		}
		if item.Lat < -90 || item.Lat > 90 || item.Lng < -180 || item.Lng > 180 {
			return fmt.Errorf("seed stops: item %q: coordinate out of range", item.ID)
		}
		rows = append(rows, item)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed stops: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
	INSERT INTO stops (
		stop_id,
		address,
		lat,
		lng,
		value,
		weight,
		service_minutes
	)
	VALUES (%s, %s, %s, %s, %s, %s, %s)
	ON CONFLICT (stop_id) DO UPDATE
	SET address = EXCLUDED.address,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		value = EXCLUDED.value,
		weight = EXCLUDED.weight,
		service_minutes = EXCLUDED.service_minutes;
	`, d.bind(1), d.bind(2), d.bind(3), d.bind(4), d.bind(5), d.bind(6), d.bind(7))

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed stops: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range rows {
		if _, err := stmt.Exec(s.ID, s.Address, s.Lat, s.Lng, s.Value, s.Weight, s.ServiceMinutes); err != nil {
			return fmt.Errorf("seed stops: insert stop_id=%q: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stops: commit tx: %w", err)
	}

	return nil
}
