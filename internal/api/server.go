package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/config"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/db"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/hotspot"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/httputil"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/monitoring"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/units"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves the dataset and hotspot API. Each request runs its own
// clustering pass; the only state shared between requests is the
// optional result cache.
type Server struct {
	db        *db.DB
	cfg       *config.Config
	clusterer hotspot.Clusterer
	cache     *hotspot.Cache // nil when cache_entries is 0
}

func NewServer(database *db.DB, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.EmptyConfig()
	}
	s := &Server{
		db:        database,
		cfg:       cfg,
		clusterer: hotspot.KMeans{},
	}
	if n := cfg.GetCacheEntries(); n > 0 {
		s.cache = hotspot.NewCache(hotspot.KMeans{}, n)
		s.clusterer = s.cache
	}
	return s
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// Router returns the /api route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, "no such endpoint")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.MethodNotAllowed(w)
	})

	// Routes stay on the root router: a method mismatch inside a subrouter
	// falls through to the root NotFoundHandler instead of the 405 handler.
	r.HandleFunc("/api/config", s.showConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/datasets", s.listDatasets).Methods(http.MethodGet)
	r.HandleFunc("/api/datasets", s.createDataset).Methods(http.MethodPost)
	r.HandleFunc("/api/datasets/{id}", s.getDataset).Methods(http.MethodGet)
	r.HandleFunc("/api/datasets/{id}", s.deleteDataset).Methods(http.MethodDelete)
	r.HandleFunc("/api/datasets/{id}/stats", s.showStats).Methods(http.MethodGet)
	r.HandleFunc("/api/datasets/{id}/hotspots", s.showHotspots).Methods(http.MethodGet)
	return r
}

// ServeMux returns a mux with the API mounted under /api/. Callers may
// attach further routes, such as the admin debug pages. API responses are
// gzip-compressed when the client accepts it.
func (s *Server) ServeMux() *http.ServeMux {
	m := http.NewServeMux()
	m.Handle("/api/", withRecovery(handlers.CompressHandler(s.Router())))
	return m
}

// recoveryLogger adapts monitoring.Logf to handlers.RecoveryHandlerLogger.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	monitoring.Logf("%s", fmt.Sprintln(v...))
}

// withRecovery turns a handler panic into a 500 instead of dropping the
// connection.
func withRecovery(h http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)(h)
}

type configResponse struct {
	DefaultClusters  int         `json:"default_clusters"`
	MinClusters      int         `json:"min_clusters"`
	MaxClusters      int         `json:"max_clusters"`
	DefaultSeed      int64       `json:"default_seed"`
	RadiusUnits      string      `json:"radius_units"`
	ValidUnits       []string    `json:"valid_units"`
	MaxUploadRecords int         `json:"max_upload_records"`
	CacheEntries     int         `json:"cache_entries"`
	Cache            *cacheStats `json:"cache,omitempty"`
	Version          string      `json:"version"`
	GitSHA           string      `json:"git_sha"`
}

type cacheStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Size   int `json:"size"`
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	resp := configResponse{
		DefaultClusters:  s.cfg.GetDefaultClusters(),
		MinClusters:      s.cfg.GetMinClusters(),
		MaxClusters:      s.cfg.GetMaxClusters(),
		DefaultSeed:      s.cfg.GetDefaultSeed(),
		RadiusUnits:      s.cfg.GetRadiusUnits(),
		ValidUnits:       units.ValidUnits,
		MaxUploadRecords: s.cfg.GetMaxUploadRecords(),
		CacheEntries:     s.cfg.GetCacheEntries(),
		Version:          version.Version,
		GitSHA:           version.GitSHA,
	}
	if s.cache != nil {
		hits, misses, size := s.cache.Stats()
		resp.Cache = &cacheStats{Hits: hits, Misses: misses, Size: size}
	}
	httputil.WriteJSONOK(w, resp)
}
