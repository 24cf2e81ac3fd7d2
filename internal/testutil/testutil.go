// Package testutil provides shared test fixtures and assertions for the
// hotspot, storage and API packages.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
)

// AllColumns is the full source schema.
var AllColumns = []string{
	accident.ColumnLatitude,
	accident.ColumnLongitude,
	accident.ColumnSeverity,
	accident.ColumnTimeOfDay,
	accident.ColumnWeather,
}

// Record builds an accident record at (lat, lon). NaN coordinates are kept
// as-is so validation paths can be exercised.
func Record(index int, lat, lon float64, severity string) accident.Record {
	return accident.Record{
		Index:     index,
		Latitude:  accident.Float64(lat),
		Longitude: accident.Float64(lon),
		Severity:  accident.ParseSeverity(severity),
		TimeOfDay: accident.TimeOfDayUnknown,
		Weather:   accident.WeatherUnknown,
	}
}

// Dataset wraps records in a dataset carrying every column.
func Dataset(records ...accident.Record) accident.Dataset {
	if records == nil {
		records = []accident.Record{}
	}
	return accident.Dataset{Columns: AllColumns, Records: records}
}

// Points builds a point slice from alternating lat, lon values.
func Points(coords ...float64) []accident.Point {
	if len(coords)%2 != 0 {
		panic("testutil.Points needs an even number of coordinates")
	}
	pts := make([]accident.Point, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		pts = append(pts, accident.Point{Lat: coords[i], Lon: coords[i+1]})
	}
	return pts
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// NewJSONRequest creates a test HTTP request with a JSON body.
func NewJSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
