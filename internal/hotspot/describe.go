package hotspot

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
)

// Stats are the descriptive statistics shown alongside the hotspot view.
// Category counts cover every row, including rows that fail coordinate
// validation, so non-geospatial breakdowns still see them.
type Stats struct {
	Total     int                        `json:"total"`
	Valid     int                        `json:"valid"`
	Rejected  int                        `json:"rejected"`
	Severity  map[accident.Severity]int  `json:"severity"`
	TimeOfDay map[accident.TimeOfDay]int `json:"time_of_day"`
	Weather   map[accident.Weather]int   `json:"weather"`

	// Mean location of the valid points; nil when there are none.
	MeanLatitude  *float64 `json:"mean_latitude,omitempty"`
	MeanLongitude *float64 `json:"mean_longitude,omitempty"`
}

// Describe computes counts per category and the mean valid location.
// Schema errors from Validate are returned unchanged.
func Describe(ds accident.Dataset) (*Stats, error) {
	valid, rejected, err := Validate(ds)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Total:     len(ds.Records),
		Valid:     len(valid),
		Rejected:  rejected,
		Severity:  make(map[accident.Severity]int),
		TimeOfDay: make(map[accident.TimeOfDay]int),
		Weather:   make(map[accident.Weather]int),
	}
	for _, r := range ds.Records {
		st.Severity[r.Severity]++
		st.TimeOfDay[r.TimeOfDay]++
		st.Weather[r.Weather]++
	}

	if len(valid) > 0 {
		lats := make([]float64, len(valid))
		lons := make([]float64, len(valid))
		for i, r := range valid {
			lats[i], lons[i] = *r.Latitude, *r.Longitude
		}
		meanLat := stat.Mean(lats, nil)
		meanLon := stat.Mean(lons, nil)
		st.MeanLatitude, st.MeanLongitude = &meanLat, &meanLon
	}
	return st, nil
}
