package geo

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Counters tallies locator cache behaviour across every region, for
// observability. Safe for concurrent use.
type Counters struct {
	CacheHits        atomic.Uint64
	CacheMisses      atomic.Uint64
	OutsideCacheHits atomic.Uint64
}

// circle is one memoized region of guaranteed-inside or guaranteed-outside
// space: a center and the squared radius of the largest circle around it
// that never crosses the polygon boundary.
type circle struct {
	x, y float64
	r2   float64
}

func (c circle) containsStrict(x, y float64) bool {
	dx, dy := x-c.x, y-c.y
	return dx*dx+dy*dy < c.r2
}

// boundedCircles is a fixed-capacity, cold-fill (no eviction) set of
// circles guarded by a readers-writer lock.
type boundedCircles struct {
	mu       sync.RWMutex
	circles  []circle
	capacity int
}

func newBoundedCircles(capacity int) *boundedCircles {
	return &boundedCircles{circles: make([]circle, 0, capacity), capacity: capacity}
}

func (b *boundedCircles) contains(x, y float64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.circles {
		if c.containsStrict(x, y) {
			return true
		}
	}
	return false
}

func (b *boundedCircles) tryInsert(c circle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.circles) >= b.capacity {
		return
	}
	b.circles = append(b.circles, c)
}

// edge is one segment of the region's boundary, used only to compute the
// clearance (distance to nearest boundary point) of a miss so a new cache
// circle can be sized safely.
type edge struct {
	a, b orb.Point
}

func (e edge) Bounds() *rtreego.Rect {
	minX, maxX := e.a[0], e.b[0]
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := e.a[1], e.b[1]
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	const minSpan = 1e-9
	w, h := maxX-minX, maxY-minY
	if w < minSpan {
		w = minSpan
	}
	if h < minSpan {
		h = minSpan
	}
	r, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
	if err != nil {
		panic("geo: invalid edge rectangle: " + err.Error())
	}
	return r
}

// distToSegment returns the Euclidean distance from p to segment (a,b).
func distToSegment(p, a, b orb.Point) float64 {
	vx, vy := b[0]-a[0], b[1]-a[1]
	wx, wy := p[0]-a[0], p[1]-a[1]
	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		dx, dy := p[0]-a[0], p[1]-a[1]
		return hypot(dx, dy)
	}
	t := (wx*vx + wy*vy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px, py := a[0]+t*vx, a[1]+t*vy
	return hypot(p[0]-px, p[1]-py)
}

func hypot(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}

// regionCache is the per-region (per zipcode polygon group) memoization
// layer described as the locator's "per-polygon cache": bounded inside and
// outside circle caches, plus the edge index used to size new circles
// safely on a miss.
type regionCache struct {
	inside, outside *boundedCircles
	edgeTree        *rtreego.Rtree
	edges           []edge
	owner           *region
}

func newRegionCache(capacity int, owner *region) *regionCache {
	rc := &regionCache{
		inside:  newBoundedCircles(capacity),
		outside: newBoundedCircles(capacity),
		owner:   owner,
	}
	for _, poly := range owner.polygons {
		for _, ring := range poly {
			for i := 0; i < len(ring); i++ {
				a := ring[i]
				b := ring[(i+1)%len(ring)]
				rc.edges = append(rc.edges, edge{a: a, b: b})
			}
		}
	}
	if len(rc.edges) > 0 {
		tree := rtreego.NewTree(2, 5, 10)
		for i := range rc.edges {
			tree.Insert(rc.edges[i])
		}
		rc.edgeTree = tree
	}
	return rc
}

// clearance returns the distance from pt to the nearest boundary edge of
// the owning region. The edge R-tree narrows the search to the k edges
// whose bounding boxes are closest to pt before falling back to exact
// segment distance, so a cache miss on a large polygon does not have to
// walk every edge.
func (rc *regionCache) clearance(pt orb.Point) float64 {
	if rc.edgeTree == nil {
		return math.MaxFloat64
	}

	k := len(rc.edges)
	if k > 12 {
		k = 12
	}
	candidates := rtreego.NearestNeighbors(k, rtreego.Point{pt[0], pt[1]}, rc.edgeTree)

	best := math.MaxFloat64
	for _, c := range candidates {
		e := c.(edge)
		if d := distToSegment(pt, e.a, e.b); d < best {
			best = d
		}
	}
	return best
}

// contains resolves whether pt lies within the owning region, consulting
// the inside/outside caches first and falling through to an exact
// point-in-multipolygon test on a miss. Counters records the path taken.
func (rc *regionCache) contains(pt orb.Point, counters *Counters) bool {
	x, y := pt[0], pt[1]

	if rc.inside.contains(x, y) {
		counters.CacheHits.Add(1)
		return true
	}
	if rc.outside.contains(x, y) {
		counters.OutsideCacheHits.Add(1)
		return false
	}

	counters.CacheMisses.Add(1)
	exact := multiPolygonContains(rc.owner.polygons, pt)

	clear := rc.clearance(pt)
	if clear >= BoundaryEpsilon() {
		r2 := clear * clear
		if exact {
			rc.inside.tryInsert(circle{x: x, y: y, r2: r2})
		} else {
			rc.outside.tryInsert(circle{x: x, y: y, r2: r2})
		}
	}

	return exact
}

// multiPolygonContains reports whether pt lies in any member polygon of mp.
func multiPolygonContains(mp orb.MultiPolygon, pt orb.Point) bool {
	for _, poly := range mp {
		if planar.PolygonContains(poly, pt) {
			return true
		}
	}
	return false
}
