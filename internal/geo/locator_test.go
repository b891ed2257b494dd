package geo

import (
	"testing"

	"github.com/maximbalsacq/aqiwindow/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareCatalog(t *testing.T) *Catalog {
	t.Helper()
	locations := []ingest.Location{
		{
			Zipcode: "00000",
			City:    "A",
			Polygons: []ingest.Polygon{{
				Points: []ingest.Point{
					{Lon: 0, Lat: 0},
					{Lon: 10, Lat: 0},
					{Lon: 10, Lat: 10},
					{Lon: 0, Lat: 10},
					{Lon: 0, Lat: 0},
				},
			}},
		},
	}
	return Build(locations, 32, 1e-5)
}

func TestLocalizeInsidePolygon(t *testing.T) {
	loc := NewLocator(squareCatalog(t))
	matches := loc.Localize(5, 5)
	require.Len(t, matches, 1)
	assert.Equal(t, "A", loc.Cities().Name(matches[0].CityID))
}

func TestLocalizeOutsidePolygon(t *testing.T) {
	loc := NewLocator(squareCatalog(t))
	matches := loc.Localize(20, 20)
	assert.Empty(t, matches)
}

func TestLocalizeBoundaryIsStable(t *testing.T) {
	loc := NewLocator(squareCatalog(t))
	first := loc.Localize(10, 10)
	second := loc.Localize(10, 10)
	assert.Equal(t, first, second)
}

func TestCacheAgreesWithExactPath(t *testing.T) {
	loc := NewLocator(squareCatalog(t))

	cold := loc.Localize(3, 3)
	require.Len(t, cold, 1)
	assert.Equal(t, uint64(0), loc.Counters.CacheHits.Load())
	assert.Equal(t, uint64(1), loc.Counters.CacheMisses.Load())

	warm := loc.Localize(3, 3)
	require.Len(t, warm, 1)
	assert.Equal(t, cold, warm)
	assert.Equal(t, uint64(1), loc.Counters.CacheHits.Load())
}

func TestOutsideCacheAgreesWithExactPath(t *testing.T) {
	// A triangle, so (8, 8) is inside the region's bounding box (and thus
	// reaches the cache) but outside the polygon itself.
	locations := []ingest.Location{{Zipcode: "00000", City: "A", Polygons: []ingest.Polygon{{Points: []ingest.Point{
		{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 0, Lat: 10}, {Lon: 0, Lat: 0},
	}}}}}
	loc := NewLocator(Build(locations, 32, 1e-5))

	cold := loc.Localize(8, 8)
	assert.Empty(t, cold)
	assert.Equal(t, uint64(0), loc.Counters.OutsideCacheHits.Load())

	warm := loc.Localize(8, 8)
	assert.Empty(t, warm)
	assert.Equal(t, uint64(1), loc.Counters.OutsideCacheHits.Load())
}

func TestCityInterningIsFirstSeenOrder(t *testing.T) {
	locations := []ingest.Location{
		{Zipcode: "1", City: "Berlin", Polygons: []ingest.Polygon{{Points: []ingest.Point{
			{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 1}, {Lon: 0, Lat: 0},
		}}}},
		{Zipcode: "2", City: "Munich", Polygons: []ingest.Polygon{{Points: []ingest.Point{
			{Lon: 2, Lat: 2}, {Lon: 3, Lat: 2}, {Lon: 3, Lat: 3}, {Lon: 2, Lat: 3}, {Lon: 2, Lat: 2},
		}}}},
		{Zipcode: "3", City: "Berlin", Polygons: []ingest.Polygon{{Points: []ingest.Point{
			{Lon: 4, Lat: 4}, {Lon: 5, Lat: 4}, {Lon: 5, Lat: 5}, {Lon: 4, Lat: 5}, {Lon: 4, Lat: 4},
		}}}},
	}
	cat := Build(locations, 32, 1e-5)
	assert.Equal(t, 2, cat.Cities.Len())
	berlin := cat.Cities.Intern("Berlin")
	munich := cat.Cities.Intern("Munich")
	assert.Equal(t, uint32(0), berlin)
	assert.Equal(t, uint32(1), munich)
}
