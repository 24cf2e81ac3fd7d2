package hotspot

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
)

// Summary describes one hotspot for presentation: where it is, how many
// accidents it holds, their mix, and how far its members spread.
type Summary struct {
	ClusterID int     `json:"cluster_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Members   int     `json:"members"`

	Severity  map[accident.Severity]int  `json:"severity"`
	TimeOfDay map[accident.TimeOfDay]int `json:"time_of_day"`
	Weather   map[accident.Weather]int   `json:"weather"`

	// Radius is the largest center-to-member distance, in degrees.
	Radius float64 `json:"radius"`
	// FatalShare is the fraction of members with Fatal severity.
	FatalShare float64 `json:"fatal_share"`
}

// Assemble joins a clustering result back onto the records it was computed
// from. records must be the validated slice whose points were clustered,
// in the same order. The returned records are copies with ClusterID set;
// the input slice is left untouched. Summaries are ordered by cluster id.
func Assemble(records []accident.Record, res *Result) ([]accident.Record, []Summary, error) {
	if res == nil {
		return nil, nil, fmt.Errorf("assemble: nil clustering result")
	}
	if len(records) != len(res.Assignments) {
		return nil, nil, fmt.Errorf("assemble: %d records but %d assignments", len(records), len(res.Assignments))
	}

	summaries := make([]Summary, len(res.Centers))
	for i, c := range res.Centers {
		summaries[i] = Summary{
			ClusterID: c.ID,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			Severity:  make(map[accident.Severity]int),
			TimeOfDay: make(map[accident.TimeOfDay]int),
			Weather:   make(map[accident.Weather]int),
		}
	}

	augmented := make([]accident.Record, len(records))
	for i, r := range records {
		id := res.Assignments[i]
		if id < 0 || id >= len(summaries) {
			return nil, nil, fmt.Errorf("assemble: record %d assigned to unknown cluster %d", r.Index, id)
		}
		cid := id
		r.ClusterID = &cid
		augmented[i] = r

		s := &summaries[id]
		s.Members++
		s.Severity[r.Severity]++
		s.TimeOfDay[r.TimeOfDay]++
		s.Weather[r.Weather]++

		center := []float64{s.Latitude, s.Longitude}
		p := r.Point()
		if d := floats.Distance(center, []float64{p.Lat, p.Lon}, 2); d > s.Radius {
			s.Radius = d
		}
	}

	for i := range summaries {
		if summaries[i].Members > 0 {
			summaries[i].FatalShare = float64(summaries[i].Severity[accident.SeverityFatal]) / float64(summaries[i].Members)
		}
	}
	return augmented, summaries, nil
}

// TotalMembers sums member counts across summaries.
func TotalMembers(summaries []Summary) int {
	n := 0
	for _, s := range summaries {
		n += s.Members
	}
	return n
}
