package repositories

import (
	"context"
	"database/sql"
	"driver-route-optimizer/internal/domain"
	"errors"
	"fmt"
)

// SQL-backed implementation of the StopRepository port. The query is
// portable, so the same type serves SQLite and Postgres.
type SQLStopRepository struct{ DB *sql.DB }

func NewSQLStopRepository(db *sql.DB) *SQLStopRepository {
	return &SQLStopRepository{DB: db}
}

// Return all stops stored in the database.
func (s *SQLStopRepository) ListStops(ctx context.Context) ([]domain.Stop, error) {
	if s.DB == nil {
		return nil, errors.New("stop repository: DB is nil")
	}

	query := `
	SELECT
		stop_id,
		address,
		lat,
		lng,
		value,
		weight,
		service_minutes
	FROM stops
	ORDER BY stop_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stops: query stops table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 64)
	for rows.Next() {
		var (
			st                     domain.Stop
			value, weight, service sql.NullFloat64
		)
		err := rows.Scan(&st.ID, &st.Address, &st.Location.Lat, &st.Location.Lng, &value, &weight, &service)
		if err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		st.Value = nullable(value)
		st.Weight = nullable(weight)
		st.ServiceMinutes = nullable(service)
		stops = append(stops, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	return stops, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
