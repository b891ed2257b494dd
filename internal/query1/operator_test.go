package query1

import (
	"testing"

	"github.com/maximbalsacq/aqiwindow/internal/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticNamer map[aggregate.CityID]string

func (n staticNamer) Name(id aggregate.CityID) string { return n[id] }

func bucketOf(city aggregate.CityID, p1, p2 float32, seq int64) aggregate.PreAggregateData {
	values := aggregate.CityMap{city: aggregate.NewParticle(p1, p2)}
	s := seq
	return aggregate.PreAggregateData{Values: values, MaxBatchSeq: &s}
}

// TestColdStartVsIncrementalAgree runs the fold over every window of the
// same synthetic stream twice — once cold-starting the window (nil cache)
// and once threading the cache from the previous window — and checks the
// two results are identical.
func TestColdStartVsIncrementalAgree(t *testing.T) {
	const cityX aggregate.CityID = 0
	names := staticNamer{cityX: "X"}

	cfg := Config{
		WindowCurrentSize:   3,
		WindowLastYearSize:  3,
		LastDaySize:         2,
		TopK:                50,
		ActiveWindowBuckets: 2,
	}

	cur := make([]aggregate.PreAggregateData, 8)
	last := make([]aggregate.PreAggregateData, 8)
	for i := range cur {
		cur[i] = bucketOf(cityX, 20, 10, int64(i))
		last[i] = bucketOf(cityX, 60, 40, int64(i))
	}

	fold := NewFold(cfg, names, 99)

	var cache *Cache
	var results []string
	for start := 0; start+cfg.WindowCurrentSize <= len(cur); start++ {
		curWin := cur[start : start+cfg.WindowCurrentSize]
		lastWin := last[start : start+cfg.WindowLastYearSize]
		out, next := fold(curWin, lastWin, cache)
		cache = &next
		cold, _ := fold(curWin, lastWin, nil)
		assert.Equal(t, cold, out)
		require.Len(t, out.TopKImproved, 1)
		results = append(results, out.TopKImproved[0].City)
	}
	for _, name := range results {
		assert.Equal(t, "X", name)
	}
}

func TestImprovedCityRanksAboveWorsened(t *testing.T) {
	const better, worse aggregate.CityID = 0, 1
	names := staticNamer{better: "Better", worse: "Worse"}

	cfg := Config{
		WindowCurrentSize:   2,
		WindowLastYearSize:  2,
		LastDaySize:         2,
		TopK:                50,
		ActiveWindowBuckets: 2,
	}

	mkBucket := func(seq int64, b1, b2 [2]float32) aggregate.PreAggregateData {
		values := aggregate.CityMap{
			better: aggregate.NewParticle(b1[0], b1[1]),
			worse:  aggregate.NewParticle(b2[0], b2[1]),
		}
		s := seq
		return aggregate.PreAggregateData{Values: values, MaxBatchSeq: &s}
	}

	cur := []aggregate.PreAggregateData{
		mkBucket(0, [2]float32{10, 5}, [2]float32{200, 150}),
		mkBucket(1, [2]float32{10, 5}, [2]float32{200, 150}),
	}
	last := []aggregate.PreAggregateData{
		mkBucket(0, [2]float32{200, 150}, [2]float32{10, 5}),
		mkBucket(1, [2]float32{200, 150}, [2]float32{10, 5}),
	}

	fold := NewFold(cfg, names, 1)
	out, _ := fold(cur, last, nil)

	require.Len(t, out.TopKImproved, 2)
	assert.Equal(t, "Better", out.TopKImproved[0].City)
	assert.Equal(t, "Worse", out.TopKImproved[1].City)
	assert.Greater(t, out.TopKImproved[0].AverageAQIImprovement, int32(0))
	assert.Less(t, out.TopKImproved[1].AverageAQIImprovement, int32(0))
}

func TestInactiveCityExcludedFromRanking(t *testing.T) {
	const active, stale aggregate.CityID = 0, 1
	names := staticNamer{active: "Active", stale: "Stale"}

	cfg := Config{
		WindowCurrentSize:   3,
		WindowLastYearSize:  3,
		LastDaySize:         3,
		TopK:                50,
		ActiveWindowBuckets: 2,
	}

	// stale only ever contributed to bucket 0, outside the trailing
	// 2-bucket active window, even though it still has a 5-day aggregate.
	seq0, seq1, seq2 := int64(0), int64(1), int64(2)
	cur := []aggregate.PreAggregateData{
		{Values: aggregate.CityMap{stale: aggregate.NewParticle(10, 5)}, MaxBatchSeq: &seq0},
		{Values: aggregate.CityMap{active: aggregate.NewParticle(10, 5)}, MaxBatchSeq: &seq1},
		{Values: aggregate.CityMap{active: aggregate.NewParticle(10, 5)}, MaxBatchSeq: &seq2},
	}
	last := []aggregate.PreAggregateData{
		{Values: aggregate.CityMap{stale: aggregate.NewParticle(100, 80)}, MaxBatchSeq: &seq0},
		{Values: aggregate.CityMap{active: aggregate.NewParticle(100, 80)}, MaxBatchSeq: &seq1},
		{Values: aggregate.CityMap{active: aggregate.NewParticle(100, 80)}, MaxBatchSeq: &seq2},
	}

	fold := NewFold(cfg, names, 1)
	out, _ := fold(cur, last, nil)

	for _, c := range out.TopKImproved {
		assert.NotEqual(t, "Stale", c.City)
	}
}
