// Package aggregate implements ParticleAggregate, the per-city running sum
// used throughout the sliding-window pipeline, plus the CityParticleMap and
// ActiveCities collections built on top of it.
package aggregate

import "fmt"

// CityID identifies a city by its index in the interned city name table.
type CityID = uint32

// Particle is a running aggregate of PM10 (p1) and PM2.5 (p2) readings.
// Sums are kept in float64 to suppress rounding error across thousands of
// incremental add/sub operations.
type Particle struct {
	sumP1 float64
	sumP2 float64
	count uint64
}

// NewParticle creates an aggregate from a single (p1, p2) reading.
func NewParticle(p1, p2 float32) Particle {
	if p1 < 0 || p2 < 0 {
		panic(fmt.Sprintf("aggregate: negative reading p1=%v p2=%v", p1, p2))
	}
	return Particle{sumP1: float64(p1), sumP2: float64(p2), count: 1}
}

// Add folds a single (p1, p2) reading into the aggregate in place.
func (p *Particle) Add(p1, p2 float32) {
	if p1 < 0 || p2 < 0 {
		panic(fmt.Sprintf("aggregate: negative reading p1=%v p2=%v", p1, p2))
	}
	p.sumP1 += float64(p1)
	p.sumP2 += float64(p2)
	p.count++
}

// P1 returns the mean PM10 value of the aggregate.
func (p Particle) P1() float32 {
	if p.count == 0 {
		return 0
	}
	return float32(p.sumP1 / float64(p.count))
}

// P2 returns the mean PM2.5 value of the aggregate.
func (p Particle) P2() float32 {
	if p.count == 0 {
		return 0
	}
	return float32(p.sumP2 / float64(p.count))
}

// Count returns the number of readings folded into the aggregate.
func (p Particle) Count() uint64 {
	return p.count
}

// Plus returns the sum of two aggregates, leaving both operands unchanged.
func (p Particle) Plus(rhs Particle) Particle {
	return Particle{
		sumP1: p.sumP1 + rhs.sumP1,
		sumP2: p.sumP2 + rhs.sumP2,
		count: p.count + rhs.count,
	}
}

// AddFrom adds rhs into p in place.
func (p *Particle) AddFrom(rhs Particle) {
	p.sumP1 += rhs.sumP1
	p.sumP2 += rhs.sumP2
	p.count += rhs.count
}

// epsilon bounds the rounding error tolerated when subtracting aggregates
// that should, mathematically, never go negative.
const epsilon = 1e-6

// Minus returns p - rhs. Panics (InvariantViolation) if rhs was never
// actually added into p, i.e. if rhs.count exceeds p.count or either sum
// would go negative beyond epsilon.
func (p Particle) Minus(rhs Particle) Particle {
	if rhs.count > p.count {
		panic(fmt.Sprintf("aggregate: removing %d units from aggregate with only %d added", rhs.count, p.count))
	}
	newCount := p.count - rhs.count
	if newCount == 0 {
		// Reset to the exact zero value instead of subtracting, to avoid
		// accumulating drift across thousands of add/sub cycles.
		return Particle{}
	}
	if p.sumP1-rhs.sumP1 < -epsilon {
		panic(fmt.Sprintf("aggregate: removing %v p1 from aggregate with only %v p1 added", rhs.sumP1, p.sumP1))
	}
	if p.sumP2-rhs.sumP2 < -epsilon {
		panic(fmt.Sprintf("aggregate: removing %v p2 from aggregate with only %v p2 added", rhs.sumP2, p.sumP2))
	}
	return Particle{
		sumP1: p.sumP1 - rhs.sumP1,
		sumP2: p.sumP2 - rhs.sumP2,
		count: newCount,
	}
}

// SubFrom subtracts rhs from p in place. See Minus.
func (p *Particle) SubFrom(rhs Particle) {
	*p = p.Minus(rhs)
}

// FoldPairs reduces a slice of (p1, p2) readings into a single aggregate.
func FoldPairs(pairs [][2]float32) Particle {
	var out Particle
	for _, pr := range pairs {
		out.sumP1 += float64(pr[0])
		out.sumP2 += float64(pr[1])
		out.count++
	}
	return out
}

// FoldParticles reduces a slice of aggregates into a single aggregate.
func FoldParticles(items []Particle) Particle {
	var out Particle
	for _, it := range items {
		out.AddFrom(it)
	}
	return out
}
