package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.yaml")
	contents := "top_k: 10\nbucket_seconds: 60\nlocations_path: /data/locations.pb\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, f.TopK)
	assert.Equal(t, int64(60), f.BucketSeconds)
	assert.Equal(t, "/data/locations.pb", f.LocationsPath)
}

func TestLoadMissingFileReturnsLoadError(t *testing.T) {
	_, err := Load("/nonexistent/path/core.yaml")
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestQuery1ConfigAppliesDefaults(t *testing.T) {
	f := File{TopK: 10}
	cfg := f.Query1Config()
	assert.Equal(t, 10, cfg.TopK)
	assert.Equal(t, 5*24*12, cfg.WindowCurrentSize)
	assert.Equal(t, int64(300), cfg.BucketSeconds)
	assert.Equal(t, 1e-5, cfg.CacheBoundaryEpsilon)
}
