package hotspot

import (
	"math"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
)

// Coordinate bounds. Values outside are rejected, never clamped.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Validate filters out records that cannot be clustered and counts them.
// A record survives when both coordinates are present, finite and inside
// the valid ranges. Survivors keep their relative order. A dataset whose
// columns do not include latitude and longitude at all is a schema error.
func Validate(ds accident.Dataset) ([]accident.Record, int, error) {
	for _, field := range []string{accident.ColumnLatitude, accident.ColumnLongitude} {
		if !ds.HasColumn(field) {
			return nil, 0, &MissingFieldError{Field: field}
		}
	}

	valid := make([]accident.Record, 0, len(ds.Records))
	rejected := 0
	for _, r := range ds.Records {
		if !ValidCoordinates(r.Latitude, r.Longitude) {
			rejected++
			continue
		}
		valid = append(valid, r)
	}
	return valid, rejected, nil
}

// ValidCoordinates reports whether lat/lon are present, finite and in range.
func ValidCoordinates(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	return inRange(*lat, MinLatitude, MaxLatitude) && inRange(*lon, MinLongitude, MaxLongitude)
}

func inRange(v, lo, hi float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= lo && v <= hi
}

// Points extracts the (lat, lon) pairs of validated records, in order.
func Points(records []accident.Record) []accident.Point {
	pts := make([]accident.Point, len(records))
	for i, r := range records {
		pts[i] = r.Point()
	}
	return pts
}
