// Package geo implements the spatial locator: an R-tree over ~8000 German
// zipcode polygons, exact point-in-polygon fallback, and a per-polygon
// inside/outside cache that makes repeated coordinates effectively free.
package geo

import (
	"github.com/dhconnelly/rtreego"
	"github.com/maximbalsacq/aqiwindow/internal/aggregate"
	"github.com/maximbalsacq/aqiwindow/internal/ingest"
	"github.com/paulmach/orb"
)

// CityTable interns city names into a contiguous, first-seen-order id
// table. Multiple polygons (and multiple zipcodes) can share one CityID.
type CityTable struct {
	names []string
	index map[string]aggregate.CityID
}

// NewCityTable builds an empty table.
func NewCityTable() *CityTable {
	return &CityTable{index: make(map[string]aggregate.CityID)}
}

// Intern returns the id for name, assigning the next contiguous id the
// first time name is seen.
func (t *CityTable) Intern(name string) aggregate.CityID {
	if id, ok := t.index[name]; ok {
		return id
	}
	id := aggregate.CityID(len(t.names))
	t.names = append(t.names, name)
	t.index[name] = id
	return id
}

// Name returns the interned name for id. Panics if id is out of range,
// which can only happen on a logic error since ids are only ever handed
// out by Intern.
func (t *CityTable) Name(id aggregate.CityID) string {
	return t.names[id]
}

// Len returns the number of distinct interned cities.
func (t *CityTable) Len() int { return len(t.names) }

// toOrbPolygon converts a wire Polygon (a single ring, lon/lat order) into
// an orb.Polygon with no holes.
func toOrbPolygon(p ingest.Polygon) orb.Polygon {
	ring := make(orb.Ring, len(p.Points))
	for i, pt := range p.Points {
		ring[i] = orb.Point{pt.Lon, pt.Lat}
	}
	return orb.Polygon{ring}
}

// region is one catalog entry: a zipcode's full area (possibly split
// across several disjoint polygons), the city it belongs to, and the
// per-region memoization cache.
type region struct {
	idx      int
	zipcode  string
	cityID   aggregate.CityID
	polygons orb.MultiPolygon
	bound    orb.Bound
	cache    *regionCache
}

// Bounds implements rtreego.Spatial.
func (r *region) Bounds() *rtreego.Rect {
	return boundToRect(r.bound)
}

// Match is one polygon hit from a localize query.
type Match struct {
	Zipcode string
	CityID  aggregate.CityID
}

// Catalog is the immutable, built-once location index.
type Catalog struct {
	Cities  *CityTable
	regions []*region
	tree    *rtreego.Rtree
}

// Build constructs a Catalog from the decoded location list. City names
// are interned in first-seen order, so CityID assignment is deterministic
// given a fixed input order. boundaryEpsilon seeds the package-level
// tuning every region's cache consults on each lookup thereafter; callers
// may still adjust it at runtime via SetBoundaryEpsilon.
func Build(locations []ingest.Location, cacheCapacity int, boundaryEpsilon float64) *Catalog {
	SetBoundaryEpsilon(boundaryEpsilon)

	cities := NewCityTable()
	regions := make([]*region, 0, len(locations))

	for i, loc := range locations {
		mp := make(orb.MultiPolygon, 0, len(loc.Polygons))
		for _, p := range loc.Polygons {
			if len(p.Points) == 0 {
				continue
			}
			mp = append(mp, toOrbPolygon(p))
		}
		if len(mp) == 0 {
			continue
		}
		r := &region{
			idx:      i,
			zipcode:  loc.Zipcode,
			cityID:   cities.Intern(loc.City),
			polygons: mp,
			bound:    mp.Bound(),
		}
		r.cache = newRegionCache(cacheCapacity, r)
		regions = append(regions, r)
	}

	tree := rtreego.NewTree(2, 25, 50)
	for _, r := range regions {
		tree.Insert(r)
	}

	return &Catalog{Cities: cities, regions: regions, tree: tree}
}

// boundToRect converts an orb.Bound into an rtreego.Rect, nudging any
// zero-width dimension open by a hair since rtreego rejects degenerate
// rectangles.
func boundToRect(b orb.Bound) *rtreego.Rect {
	const minSpan = 1e-9
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	if w < minSpan {
		w = minSpan
	}
	if h < minSpan {
		h = minSpan
	}
	r, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
	if err != nil {
		panic("geo: invalid bounding rectangle: " + err.Error())
	}
	return r
}
