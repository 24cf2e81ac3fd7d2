package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/db"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/httputil"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/monitoring"
)

// maxUploadBytes caps the request body independently of the record limit.
const maxUploadBytes = 64 << 20

// knownColumns is the order recognised columns are reported in.
var knownColumns = []string{
	accident.ColumnLatitude,
	accident.ColumnLongitude,
	accident.ColumnSeverity,
	accident.ColumnTimeOfDay,
	accident.ColumnWeather,
}

type uploadRequest struct {
	Name    string           `json:"name"`
	Records []map[string]any `json:"records"`
}

type datasetResponse struct {
	db.DatasetInfo
	Records []accident.Record `json:"records"`
}

func (s *Server) createDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req uploadRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httputil.BadRequest(w, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httputil.BadRequest(w, "name is required")
		return
	}
	if len(req.Records) == 0 {
		httputil.BadRequest(w, "records must not be empty")
		return
	}
	if limit := s.cfg.GetMaxUploadRecords(); len(req.Records) > limit {
		httputil.WriteJSONError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("too many records: %d (max %d)", len(req.Records), limit))
		return
	}

	ds, err := decodeDataset(req.Records)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	info, err := s.db.CreateDataset(r.Context(), req.Name, ds)
	if err != nil {
		monitoring.Logf("create dataset %q: %v", req.Name, err)
		httputil.InternalServerError(w, "failed to store dataset")
		return
	}
	monitoring.Logf("stored dataset %s (%q) with %d records", info.ID, info.Name, info.RecordCount)
	httputil.WriteJSON(w, http.StatusCreated, info)
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	infos, err := s.db.ListDatasets(r.Context())
	if err != nil {
		monitoring.Logf("list datasets: %v", err)
		httputil.InternalServerError(w, "failed to list datasets")
		return
	}
	httputil.WriteJSONOK(w, infos)
}

func (s *Server) getDataset(w http.ResponseWriter, r *http.Request) {
	info, ds, err := s.db.LoadDataset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, datasetResponse{DatasetInfo: *info, Records: ds.Records})
}

func (s *Server) deleteDataset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.db.DeleteDataset(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeDataset turns uploaded JSON objects into records. The column set
// is the union of keys seen across all objects. Coordinates may be JSON
// numbers or numeric strings; null, absent, or unparseable coordinates
// are stored as missing and left for validation to reject.
func decodeDataset(raw []map[string]any) (accident.Dataset, error) {
	seen := make(map[string]bool)
	records := make([]accident.Record, len(raw))

	for i, obj := range raw {
		for key := range obj {
			seen[key] = true
		}

		lat, err := coordinate(obj[accident.ColumnLatitude])
		if err != nil {
			return accident.Dataset{}, fmt.Errorf("record %d: %s: %w", i, accident.ColumnLatitude, err)
		}
		lon, err := coordinate(obj[accident.ColumnLongitude])
		if err != nil {
			return accident.Dataset{}, fmt.Errorf("record %d: %s: %w", i, accident.ColumnLongitude, err)
		}

		var labels [3]string
		for j, col := range []string{accident.ColumnSeverity, accident.ColumnTimeOfDay, accident.ColumnWeather} {
			if labels[j], err = label(obj[col]); err != nil {
				return accident.Dataset{}, fmt.Errorf("record %d: %s: %w", i, col, err)
			}
		}

		records[i] = accident.Record{
			Index:     i,
			Latitude:  lat,
			Longitude: lon,
			Severity:  accident.ParseSeverity(labels[0]),
			TimeOfDay: accident.ParseTimeOfDay(labels[1]),
			Weather:   accident.ParseWeather(labels[2]),
		}
	}

	columns := make([]string, 0, len(seen))
	for _, c := range knownColumns {
		if seen[c] {
			columns = append(columns, c)
			delete(seen, c)
		}
	}
	var extra []string
	for c := range seen {
		extra = append(extra, c)
	}
	sort.Strings(extra)
	columns = append(columns, extra...)

	return accident.Dataset{Columns: columns, Records: records}, nil
}

func coordinate(v any) (*float64, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, nil
		}
		return &f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, nil
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("expected number, got %T", v)
	}
}

func label(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}
