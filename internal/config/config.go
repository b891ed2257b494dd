// Package config loads the YAML configuration file recognized by the core
// and the q1 command, defaulting any field the file leaves unset.
package config

import (
	"fmt"
	"os"

	"github.com/maximbalsacq/aqiwindow/internal/query1"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of the configuration file.
type File struct {
	WindowCurrentSize       int     `yaml:"window_current_size"`
	WindowLastYearSize      int     `yaml:"window_lastyear_size"`
	LastDaySize             int     `yaml:"last_day_size"`
	BucketSeconds           int64   `yaml:"bucket_seconds"`
	TopK                    int     `yaml:"top_k"`
	ActiveWindowBuckets     int     `yaml:"active_window_buckets"`
	CacheCapacityPerPolygon int     `yaml:"cache_capacity_per_polygon"`
	CacheBoundaryEpsilon    float64 `yaml:"cache_boundary_epsilon"`
	LocalizationWorkers     int     `yaml:"localization_workers"`
	PrefetchDepth           int     `yaml:"prefetch_depth"`

	LocationsPath    string `yaml:"locations_path"`
	BatchesPath      string `yaml:"batches_path"`
	ResultStreamAddr string `yaml:"result_stream_addr"`
}

// LoadError marks a failure reading or parsing the configuration file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("config: %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Load reads and parses the YAML file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, &LoadError{Path: path, Err: err}
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, &LoadError{Path: path, Err: err}
	}
	return f, nil
}

// Query1Config materializes the subset of f recognized by the streaming
// core, defaulting any field left at its zero value.
func (f File) Query1Config() query1.Config {
	d := query1.DefaultConfig()
	cfg := query1.Config{
		WindowCurrentSize:       orDefault(f.WindowCurrentSize, d.WindowCurrentSize),
		WindowLastYearSize:      orDefault(f.WindowLastYearSize, d.WindowLastYearSize),
		LastDaySize:             orDefault(f.LastDaySize, d.LastDaySize),
		BucketSeconds:           orDefaultInt64(f.BucketSeconds, d.BucketSeconds),
		TopK:                    orDefault(f.TopK, d.TopK),
		ActiveWindowBuckets:     orDefault(f.ActiveWindowBuckets, d.ActiveWindowBuckets),
		CacheCapacityPerPolygon: orDefault(f.CacheCapacityPerPolygon, d.CacheCapacityPerPolygon),
		CacheBoundaryEpsilon:    orDefaultFloat(f.CacheBoundaryEpsilon, d.CacheBoundaryEpsilon),
		LocalizationWorkers:     orDefault(f.LocalizationWorkers, d.LocalizationWorkers),
		PrefetchDepth:           orDefault(f.PrefetchDepth, d.PrefetchDepth),
	}
	return cfg
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultInt64(v, def int64) int64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
