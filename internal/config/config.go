package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/fsutil"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/units"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/hotspot.defaults.json"

// Default values used when a field is omitted from the config file.
const (
	DefaultListen           = ":8080"
	DefaultDBPath           = "accidents.db"
	DefaultClusters         = 5
	DefaultMinClusters      = 2
	DefaultMaxClusters      = 10
	DefaultSeed             = int64(42)
	DefaultCacheEntries     = 32
	DefaultMaxUploadRecords = 50000
	DefaultShutdownTimeout  = 5 * time.Second
)

// Config is the root configuration for the hotspot server. Every field is
// optional; the Get* accessors fall back to the defaults above, so
// partial files are safe.
type Config struct {
	// Server params
	Listen          *string `json:"listen,omitempty"`
	DBPath          *string `json:"db_path,omitempty"`
	ShutdownTimeout *string `json:"shutdown_timeout,omitempty"` // duration string like "5s"

	// Clustering params
	DefaultClusters *int   `json:"default_clusters,omitempty"`
	MinClusters     *int   `json:"min_clusters,omitempty"`
	MaxClusters     *int   `json:"max_clusters,omitempty"`
	DefaultSeed     *int64 `json:"default_seed,omitempty"`
	CacheEntries    *int   `json:"cache_entries,omitempty"`

	// Presentation params
	RadiusUnits      *string `json:"radius_units,omitempty"`
	MaxUploadRecords *int    `json:"max_upload_records,omitempty"`
}

// Helper functions to create pointers
func ptrInt(v int) *int          { return &v }
func ptrInt64(v int64) *int64    { return &v }
func ptrString(v string) *string { return &v }

// EmptyConfig returns a Config with every field unset.
func EmptyConfig() *Config {
	return &Config{}
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	return &Config{
		Listen:           ptrString(DefaultListen),
		DBPath:           ptrString(DefaultDBPath),
		ShutdownTimeout:  ptrString(DefaultShutdownTimeout.String()),
		DefaultClusters:  ptrInt(DefaultClusters),
		MinClusters:      ptrInt(DefaultMinClusters),
		MaxClusters:      ptrInt(DefaultMaxClusters),
		DefaultSeed:      ptrInt64(DefaultSeed),
		CacheEntries:     ptrInt(DefaultCacheEntries),
		RadiusUnits:      ptrString(units.Degrees),
		MaxUploadRecords: ptrInt(DefaultMaxUploadRecords),
	}
}

// LoadConfig loads a Config from a JSON file. The path must have a .json
// extension and the file must be under 1MB.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadConfigFS is LoadConfig reading through fsys.
func LoadConfigFS(fsys fsutil.FileSystem, path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/hotspot/
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are consistent.
func (c *Config) Validate() error {
	minK, maxK := c.GetMinClusters(), c.GetMaxClusters()
	if minK < 1 {
		return fmt.Errorf("min_clusters must be at least 1, got %d", minK)
	}
	if maxK < minK {
		return fmt.Errorf("max_clusters (%d) must not be below min_clusters (%d)", maxK, minK)
	}
	if k := c.GetDefaultClusters(); k < minK || k > maxK {
		return fmt.Errorf("default_clusters must be between %d and %d, got %d", minK, maxK, k)
	}

	if c.CacheEntries != nil && *c.CacheEntries < 0 {
		return fmt.Errorf("cache_entries must be non-negative, got %d", *c.CacheEntries)
	}

	if c.MaxUploadRecords != nil && *c.MaxUploadRecords < 1 {
		return fmt.Errorf("max_upload_records must be positive, got %d", *c.MaxUploadRecords)
	}

	if c.RadiusUnits != nil && !units.IsValid(*c.RadiusUnits) {
		return fmt.Errorf("radius_units must be one of %s, got %q", units.GetValidUnitsString(), *c.RadiusUnits)
	}

	if c.ShutdownTimeout != nil && *c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(*c.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdown_timeout '%s': %w", *c.ShutdownTimeout, err)
		}
	}

	return nil
}

// GetListen returns the listen address or the default.
func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return DefaultListen
	}
	return *c.Listen
}

// GetDBPath returns the database path or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return DefaultDBPath
	}
	return *c.DBPath
}

// GetShutdownTimeout parses and returns ShutdownTimeout as a time.Duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == nil || *c.ShutdownTimeout == "" {
		return DefaultShutdownTimeout
	}
	d, err := time.ParseDuration(*c.ShutdownTimeout)
	if err != nil {
		return DefaultShutdownTimeout // default on parse error
	}
	return d
}

// GetDefaultClusters returns the default_clusters value or the default.
func (c *Config) GetDefaultClusters() int {
	if c.DefaultClusters == nil {
		return DefaultClusters
	}
	return *c.DefaultClusters
}

// GetMinClusters returns the min_clusters value or the default.
func (c *Config) GetMinClusters() int {
	if c.MinClusters == nil {
		return DefaultMinClusters
	}
	return *c.MinClusters
}

// GetMaxClusters returns the max_clusters value or the default.
func (c *Config) GetMaxClusters() int {
	if c.MaxClusters == nil {
		return DefaultMaxClusters
	}
	return *c.MaxClusters
}

// GetDefaultSeed returns the default_seed value or the default.
func (c *Config) GetDefaultSeed() int64 {
	if c.DefaultSeed == nil {
		return DefaultSeed
	}
	return *c.DefaultSeed
}

// GetCacheEntries returns the cache_entries value or the default.
// Zero disables memoization.
func (c *Config) GetCacheEntries() int {
	if c.CacheEntries == nil {
		return DefaultCacheEntries
	}
	return *c.CacheEntries
}

// GetRadiusUnits returns the radius_units value or the default.
func (c *Config) GetRadiusUnits() string {
	if c.RadiusUnits == nil || *c.RadiusUnits == "" {
		return units.Degrees
	}
	return *c.RadiusUnits
}

// GetMaxUploadRecords returns the max_upload_records value or the default.
func (c *Config) GetMaxUploadRecords() int {
	if c.MaxUploadRecords == nil {
		return DefaultMaxUploadRecords
	}
	return *c.MaxUploadRecords
}
