package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/db"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/hotspot"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/httputil"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/monitoring"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/units"
)

// hotspotResponse is one clustering run over a stored dataset. Radii in
// Clusters are expressed in Units.
type hotspotResponse struct {
	RunID      string            `json:"run_id"`
	DatasetID  string            `json:"dataset_id"`
	K          int               `json:"k"`
	Seed       int64             `json:"seed"`
	Units      string            `json:"units"`
	Iterations int               `json:"iterations"`
	Converged  bool              `json:"converged"`
	Total      int               `json:"total"`
	Valid      int               `json:"valid"`
	Rejected   int               `json:"rejected"`
	Centers    []accident.Center `json:"centers"`
	Clusters   []hotspot.Summary `json:"clusters"`
	Records    []accident.Record `json:"records"`
}

type hotspotParams struct {
	k     int
	seed  int64
	units string
}

// parseHotspotParams reads k, seed and units from the query string,
// falling back to configured defaults. k must lie within the configured
// bounds.
func (s *Server) parseHotspotParams(r *http.Request) (hotspotParams, error) {
	q := r.URL.Query()
	p := hotspotParams{
		k:     s.cfg.GetDefaultClusters(),
		seed:  s.cfg.GetDefaultSeed(),
		units: s.cfg.GetRadiusUnits(),
	}

	if v := q.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return p, &hotspot.InvalidParameterError{Name: "k", Value: v, Reason: "not an integer"}
		}
		p.k = k
	}
	if minK, maxK := s.cfg.GetMinClusters(), s.cfg.GetMaxClusters(); p.k < minK || p.k > maxK {
		return p, &hotspot.InvalidParameterError{
			Name:   "k",
			Value:  strconv.Itoa(p.k),
			Reason: fmt.Sprintf("must be between %d and %d", minK, maxK),
		}
	}

	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return p, &hotspot.InvalidParameterError{Name: "seed", Value: v, Reason: "not an integer"}
		}
		p.seed = seed
	}

	if v := q.Get("units"); v != "" {
		if !units.IsValid(v) {
			return p, &hotspot.InvalidParameterError{Name: "units", Value: v, Reason: "must be one of " + units.GetValidUnitsString()}
		}
		p.units = v
	}
	return p, nil
}

func (s *Server) showHotspots(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseHotspotParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	info, ds, err := s.db.LoadDataset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	valid, rejected, err := hotspot.Validate(ds)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.clusterer.Cluster(hotspot.Points(valid), params.k, params.seed)
	if err != nil {
		s.writeError(w, err)
		return
	}

	records, summaries, err := hotspot.Assemble(valid, res)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for i := range summaries {
		summaries[i].Radius = units.ConvertRadius(summaries[i].Radius, params.units)
	}

	resp := hotspotResponse{
		RunID:      uuid.NewString(),
		DatasetID:  info.ID,
		K:          params.k,
		Seed:       params.seed,
		Units:      params.units,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Total:      len(ds.Records),
		Valid:      len(valid),
		Rejected:   rejected,
		Centers:    res.Centers,
		Clusters:   summaries,
		Records:    records,
	}
	monitoring.Logf("run %s: dataset %s k=%d seed=%d -> %d centers in %d iterations",
		resp.RunID, info.ID, params.k, params.seed, len(res.Centers), res.Iterations)
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	_, ds, err := s.db.LoadDataset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := hotspot.Describe(ds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, st)
}

// writeError maps domain errors onto HTTP responses. Too little data is
// reported as a warning rather than an error: the request was fine, the
// dataset just cannot support the hotspot view.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		invalid      *hotspot.InvalidParameterError
		insufficient *hotspot.InsufficientDataError
		missing      *hotspot.MissingFieldError
	)
	switch {
	case errors.As(err, &invalid):
		httputil.BadRequest(w, err.Error())
	case errors.As(err, &insufficient):
		httputil.WriteJSONWarning(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &missing):
		httputil.UnprocessableEntity(w, err.Error())
	case errors.Is(err, db.ErrDatasetNotFound):
		httputil.NotFound(w, err.Error())
	default:
		monitoring.Logf("internal error: %v", err)
		httputil.InternalServerError(w, "internal error")
	}
}
