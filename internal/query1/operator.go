package query1

import (
	"math"
	"sort"

	"github.com/maximbalsacq/aqiwindow/internal/aggregate"
	"github.com/maximbalsacq/aqiwindow/internal/aqi"
	"github.com/maximbalsacq/aqiwindow/internal/ingest"
	"github.com/maximbalsacq/aqiwindow/internal/window"
)

// Cache is the SlidingWindowCache threaded through the fold: the aggregate
// of every bucket in the respective window except the newest one.
type Cache struct {
	Current1d  aggregate.CityMap
	Current5d  aggregate.CityMap
	LastYear5d aggregate.CityMap
}

// CityNamer resolves an interned city id back to its display name.
type CityNamer interface {
	Name(id aggregate.CityID) string
}

type scoredCity struct {
	city        aggregate.CityID
	improvement int32
}

// foldValues folds every bucket's Values into a single CityMap, reducing
// each city's per-bucket aggregates with FoldParticles rather than
// merging bucket-by-bucket, since cold-start here really is folding a
// collection of aggregates into one.
func foldValues(buckets []aggregate.PreAggregateData) aggregate.CityMap {
	byCity := make(map[aggregate.CityID][]aggregate.Particle)
	for _, b := range buckets {
		for city, p := range b.Values {
			byCity[city] = append(byCity[city], p)
		}
	}
	out := make(aggregate.CityMap, len(byCity))
	for city, particles := range byCity {
		out[city] = aggregate.FoldParticles(particles)
	}
	return out
}

func activeCities(cur []aggregate.PreAggregateData, windowBuckets int) aggregate.ActiveCities {
	n := windowBuckets
	if n > len(cur) {
		n = len(cur)
	}
	maps := make([]aggregate.CityMap, n)
	for i, b := range cur[len(cur)-n:] {
		maps[i] = b.Values
	}
	return aggregate.NewActiveCities(maps...)
}

// maxAQIDebs computes max(AQI_pm10, AQI_pm25), as-DEBS. Returns ok=false
// if either concentration falls outside its breakpoint table, in which
// case the city is silently dropped from ranking (per the error-handling
// policy: out-of-scale AQI during improvement ranking is not an error).
func maxAQIDebs(p aggregate.Particle) (int32, bool) {
	v10, err := aqi.FromPM10(p.P1())
	if err != nil {
		return 0, false
	}
	v25, err := aqi.FromPM25(p.P2())
	if err != nil {
		return 0, false
	}
	a, b := v10.GetAsDEBS(), v25.GetAsDEBS()
	if a > b {
		return a, true
	}
	return b, true
}

// lastDayAQIDebs computes the two last-day AQI fields independently,
// substituting math.MaxInt32 for whichever side falls outside scale.
func lastDayAQIDebs(p aggregate.Particle) (p1, p2 int32) {
	if v, err := aqi.FromPM10(p.P1()); err == nil {
		p1 = v.GetAsDEBS()
	} else {
		p1 = math.MaxInt32
	}
	if v, err := aqi.FromPM25(p.P2()); err == nil {
		p2 = v.GetAsDEBS()
	} else {
		p2 = math.MaxInt32
	}
	return
}

func batchSeqOf(bucket aggregate.PreAggregateData, fallback int64) int64 {
	if bucket.MaxBatchSeq != nil {
		return *bucket.MaxBatchSeq
	}
	return fallback
}

// NewFold builds the per-window fold function handed to window.Engine. It
// closes over the static config, the city name table, and the benchmark
// id that tags every emitted result.
func NewFold(cfg Config, cities CityNamer, benchmarkID int64) window.FoldFunc[aggregate.PreAggregateData, aggregate.PreAggregateData, Cache, ingest.ResultQ1] {
	return func(cur, last []aggregate.PreAggregateData, cache *Cache) (ingest.ResultQ1, Cache) {
		n := len(cur)
		newestCur := cur[n-1]
		newestLast := last[len(last)-1]

		var cur1d, cur5d, last5d aggregate.CityMap
		if cache != nil {
			cur1d = cache.Current1d.Clone()
			aggregate.MergeAdd(cur1d, newestCur.Values)
			cur5d = cache.Current5d.Clone()
			aggregate.MergeAdd(cur5d, newestCur.Values)
			last5d = cache.LastYear5d.Clone()
			aggregate.MergeAdd(last5d, newestLast.Values)
		} else {
			lastDayStart := n - cfg.LastDaySize
			if lastDayStart < 0 {
				lastDayStart = 0
			}
			cur1d = foldValues(cur[lastDayStart:])
			cur5d = foldValues(cur)
			last5d = foldValues(last)
		}

		next1d := cur1d.Clone()
		if outIdx := n - cfg.LastDaySize; outIdx >= 0 && outIdx < n {
			aggregate.MergeSub(next1d, cur[outIdx].Values)
		}
		next5d := cur5d.Clone()
		aggregate.MergeSub(next5d, cur[0].Values)
		nextLast5d := last5d.Clone()
		aggregate.MergeSub(nextLast5d, last[0].Values)

		active := activeCities(cur, cfg.ActiveWindowBuckets)

		scored := make([]scoredCity, 0, len(cur5d))
		for city, curAgg := range cur5d {
			if !active.IsActive(city) {
				continue
			}
			lastAgg, ok := last5d[city]
			if !ok {
				continue
			}
			curAqi, ok := maxAQIDebs(curAgg)
			if !ok {
				continue
			}
			lastAqi, ok := maxAQIDebs(lastAgg)
			if !ok {
				continue
			}
			scored = append(scored, scoredCity{city: city, improvement: curAqi - lastAqi})
		}

		sort.Slice(scored, func(i, j int) bool {
			if scored[i].improvement != scored[j].improvement {
				return scored[i].improvement < scored[j].improvement
			}
			// Tie-break: ascending city id. Unspecified by the source;
			// this just needs to be stable and deterministic.
			return scored[i].city < scored[j].city
		})
		if len(scored) > cfg.TopK {
			scored = scored[:cfg.TopK]
		}

		topK := make([]ingest.TopKCity, len(scored))
		for i, s := range scored {
			p1, p2 := lastDayAQIDebs(cur1d[s.city])
			topK[i] = ingest.TopKCity{
				Position:              int32(i),
				City:                  cities.Name(s.city),
				CurrentAQIP1:          p1,
				CurrentAQIP2:          p2,
				AverageAQIImprovement: -s.improvement,
			}
		}

		result := ingest.ResultQ1{
			BenchmarkID:  benchmarkID,
			BatchSeqID:   batchSeqOf(newestCur, 0),
			TopKImproved: topK,
		}
		newCache := Cache{Current1d: next1d, Current5d: next5d, LastYear5d: nextLast5d}
		return result, newCache
	}
}
