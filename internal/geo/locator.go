package geo

import (
	"github.com/dhconnelly/rtreego"
	"github.com/maximbalsacq/aqiwindow/internal/aggregate"
	"github.com/paulmach/orb"
)

// Locator wraps a built Catalog with the shared cache-hit counters. It is
// immutable except for the interior-mutable per-region caches, and is safe
// to share by reference across parallel localization workers.
type Locator struct {
	catalog  *Catalog
	Counters *Counters
}

// NewLocator builds a Locator over catalog.
func NewLocator(catalog *Catalog) *Locator {
	return &Locator{catalog: catalog, Counters: &Counters{}}
}

// Germany bounding box, used as a cheap pre-filter upstream of the R-tree
// walk: most coordinates outside it can be rejected without touching the
// tree at all.
const (
	germanyLatMin = 47.40724
	germanyLatMax = 54.9079
	germanyLngMin = 5.98815
	germanyLngMax = 14.98853
)

// InGermanyBoundingBox reports whether (lat, lng) falls within the coarse
// pre-filter box.
func InGermanyBoundingBox(lat, lng float64) bool {
	return lat >= germanyLatMin && lat <= germanyLatMax && lng >= germanyLngMin && lng <= germanyLngMax
}

// Localize returns every region whose polygon contains (lat, lng). An
// empty result means the point falls outside every known polygon.
func (l *Locator) Localize(lat, lng float64) []Match {
	pt := orb.Point{lng, lat}
	queryRect := pointRect(lng, lat)

	candidates := l.catalog.tree.SearchIntersect(queryRect)
	if len(candidates) == 0 {
		return nil
	}

	var out []Match
	for _, c := range candidates {
		r := c.(*region)
		if r.cache.contains(pt, l.Counters) {
			out = append(out, Match{Zipcode: r.zipcode, CityID: r.cityID})
		}
	}
	return out
}

// LocalizeCity is a convenience wrapper over Localize returning just the
// first match's CityID, which is all the pipeline needs once a point has
// been attributed to a city.
func (l *Locator) LocalizeCity(lat, lng float64) (aggregate.CityID, bool) {
	matches := l.Localize(lat, lng)
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].CityID, true
}

// Cities exposes the interned city table for name lookups at emit time.
func (l *Locator) Cities() *CityTable { return l.catalog.Cities }

func pointRect(x, y float64) *rtreego.Rect {
	const span = 1e-9
	r, err := rtreego.NewRect(rtreego.Point{x, y}, []float64{span, span})
	if err != nil {
		panic("geo: invalid query rectangle: " + err.Error())
	}
	return r
}
