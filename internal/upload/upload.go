// Package upload turns an uploaded address file into stops or bare addresses.
//
// Two layouts are accepted. A file whose first non-empty line contains a comma
// is CSV with a header row; any other file holds one address per line.
package upload

import (
	"driver-route-optimizer/internal/domain"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Result holds what a file yielded. Stops is filled when the CSV header
// carries both lat and lng; otherwise Addresses still need geocoding.
type Result struct {
	Stops     []domain.Stop
	Addresses []string
}

var ErrEmpty = errors.New("upload: file contains no addresses")

// Parse reads the whole of r.
func Parse(r io.Reader) (Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("upload: read: %w", err)
	}

	lines := nonEmptyLines(string(raw))
	if len(lines) == 0 {
		return Result{}, ErrEmpty
	}

	var res Result
	if strings.Contains(lines[0], ",") {
		res, err = parseCSV(lines)
		if err != nil {
			return Result{}, err
		}
	} else {
		res.Addresses = lines
	}

	if len(res.Stops) == 0 && len(res.Addresses) == 0 {
		return Result{}, ErrEmpty
	}
	return res, nil
}

func nonEmptyLines(s string) []string {
	s = strings.TrimPrefix(s, "\ufeff")
	out := make([]string, 0, 16)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func parseCSV(lines []string) (Result, error) {
	cr := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("upload: read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	_, hasLat := col["lat"]
	_, hasLng := col["lng"]
	_, hasAddress := col["address"]

	var res Result
	for idx := 1; ; idx++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("upload: row %d: %w", idx, err)
		}
		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		if !hasLat || !hasLng {
			addr := strings.Join(rec, ", ")
			if hasAddress {
				addr = field("address")
			}
			if addr != "" {
				res.Addresses = append(res.Addresses, addr)
			}
			continue
		}

		addr := field("address")
		if addr == "" {
			continue
		}

		st := domain.Stop{ID: field("id"), Address: addr}
		if st.ID == "" {
			st.ID = fmt.Sprintf("order_%d", idx)
		}
		if st.Location.Lat, err = parseFloat(field("lat")); err != nil {
			return Result{}, fmt.Errorf("upload: row %d: lat: %w", idx, err)
		}
		if st.Location.Lng, err = parseFloat(field("lng")); err != nil {
			return Result{}, fmt.Errorf("upload: row %d: lng: %w", idx, err)
		}
		if st.Value, err = optionalFloat(field("value")); err != nil {
			return Result{}, fmt.Errorf("upload: row %d: value: %w", idx, err)
		}
		if st.Weight, err = optionalFloat(field("weight")); err != nil {
			return Result{}, fmt.Errorf("upload: row %d: weight: %w", idx, err)
		}
		if st.ServiceMinutes, err = optionalFloat(field("service_time")); err != nil {
			return Result{}, fmt.Errorf("upload: row %d: service_time: %w", idx, err)
		}
		res.Stops = append(res.Stops, st)
	}
	return res, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("missing value")
	}
	return strconv.ParseFloat(s, 64)
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
