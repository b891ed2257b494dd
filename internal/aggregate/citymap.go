package aggregate

// LocalizedMeasurement is a measurement that has already been mapped to a
// city by the locator. Coordinates are discarded; only the city id, source
// batch id, timestamp and particle readings remain.
type LocalizedMeasurement struct {
	BatchSeqID       int64
	CityID           CityID
	TimestampSeconds int64
	P1               float32
	P2               float32
}

// CityMap maps a CityID to its running particle aggregate. Key order is
// irrelevant; this is the unit of the pre-aggregated streams fed into the
// sliding-window engine.
type CityMap map[CityID]Particle

// Add folds a single reading for city into the map, creating an entry if
// one does not exist yet.
func (m CityMap) Add(city CityID, p1, p2 float32) {
	if agg, ok := m[city]; ok {
		agg.Add(p1, p2)
		m[city] = agg
	} else {
		m[city] = NewParticle(p1, p2)
	}
}

// MergeAdd computes m[k] += other[k] for every key k in other, in place.
func MergeAdd(m CityMap, other CityMap) {
	for k, v := range other {
		if cur, ok := m[k]; ok {
			cur.AddFrom(v)
			m[k] = cur
		} else {
			m[k] = v
		}
	}
}

// MergeSub computes m[k] -= other[k] for every key k in other, in place.
// A key whose count drops to zero is removed from m. Panics if a key in
// other is missing from m — removing a city's contribution without ever
// having added it is an invariant violation.
func MergeSub(m CityMap, other CityMap) {
	for k, v := range other {
		cur, ok := m[k]
		if !ok {
			panic("aggregate: removing city without having added it previously")
		}
		cur.SubFrom(v)
		if cur.Count() == 0 {
			delete(m, k)
			continue
		}
		m[k] = cur
	}
}

// Clone returns a shallow copy of m; values are plain structs so this is a
// full value copy.
func (m CityMap) Clone() CityMap {
	out := make(CityMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PreAggregateData is the per-5-minute-bucket pre-aggregation result: the
// per-city sums for the bucket, plus the largest source batch id that
// contributed a measurement to it.
type PreAggregateData struct {
	Values      CityMap
	MaxBatchSeq *int64
}

// PreAggregate folds a single bucket of LocalizedMeasurements into a
// PreAggregateData value.
func PreAggregate(bucket []LocalizedMeasurement) PreAggregateData {
	values := make(CityMap, 16)
	var maxBatch *int64
	for _, m := range bucket {
		values.Add(m.CityID, m.P1, m.P2)
	}
	if len(bucket) > 0 {
		last := bucket[len(bucket)-1].BatchSeqID
		maxBatch = &last
	}
	return PreAggregateData{Values: values, MaxBatchSeq: maxBatch}
}
