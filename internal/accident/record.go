// Package accident holds the accident record model shared by the storage,
// clustering and API layers.
package accident

import "fmt"

// Column names recognised in a source dataset.
const (
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
	ColumnSeverity  = "severity"
	ColumnTimeOfDay = "time_of_day"
	ColumnWeather   = "weather"
)

// Record is one accident row. Latitude and Longitude are nil when the
// source row had no value. ClusterID stays nil until a clustering run
// has labelled the record.
type Record struct {
	Index     int       `json:"index"` // position in the source dataset
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Severity  Severity  `json:"severity"`
	TimeOfDay TimeOfDay `json:"time_of_day"`
	Weather   Weather   `json:"weather"`
	ClusterID *int      `json:"cluster_id,omitempty"`
}

// Point returns the record's (lat, lon) pair. Callers must have validated
// the record first; a missing coordinate yields zero.
func (r Record) Point() Point {
	var p Point
	if r.Latitude != nil {
		p.Lat = *r.Latitude
	}
	if r.Longitude != nil {
		p.Lon = *r.Longitude
	}
	return p
}

func (r Record) String() string {
	return fmt.Sprintf("#%d (%s, %s) severity=%s time=%s weather=%s",
		r.Index, fmtCoord(r.Latitude), fmtCoord(r.Longitude), r.Severity, r.TimeOfDay, r.Weather)
}

func fmtCoord(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.5f", *v)
}

// Dataset is an ordered collection of records together with the column
// names present in its source. Order is insertion order and carries no
// meaning for clustering.
type Dataset struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// HasColumn reports whether the source carried the named column.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Point is a location in (latitude, longitude) degrees treated as a flat plane.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Center is the centroid of one cluster. ID is 0-indexed and stable for the
// lifetime of a single clustering run.
type Center struct {
	ID        int     `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the center location.
func (c Center) Point() Point {
	return Point{Lat: c.Latitude, Lon: c.Longitude}
}

// Float64 returns a pointer to v. Handy for building records in code.
func Float64(v float64) *float64 { return &v }
