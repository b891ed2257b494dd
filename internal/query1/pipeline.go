package query1

import (
	"context"

	"github.com/maximbalsacq/aqiwindow/internal/aggregate"
	"github.com/maximbalsacq/aqiwindow/internal/geo"
	"github.com/maximbalsacq/aqiwindow/internal/ingest"
	"github.com/maximbalsacq/aqiwindow/internal/partition"
	"github.com/maximbalsacq/aqiwindow/internal/spliter"
	"github.com/maximbalsacq/aqiwindow/internal/window"
	"golang.org/x/sync/errgroup"
)

// batchPrefetcher runs the batch source on its own goroutine, feeding a
// bounded channel so the producer can run up to a fixed number of batches
// ahead of the consumer instead of the consumer blocking on it directly.
type batchPrefetcher struct {
	ch     chan ingest.Batch
	errCh  chan error
	cancel context.CancelFunc
}

func startPrefetch(ctx context.Context, source ingest.BatchSource, depth int) *batchPrefetcher {
	ctx, cancel := context.WithCancel(ctx)
	p := &batchPrefetcher{
		ch:     make(chan ingest.Batch, depth),
		errCh:  make(chan error, 1),
		cancel: cancel,
	}
	go p.run(ctx, source)
	return p
}

func (p *batchPrefetcher) run(ctx context.Context, source ingest.BatchSource) {
	defer close(p.ch)
	for {
		b, err, ok := source.Next(ctx)
		if err != nil {
			select {
			case p.errCh <- err:
			default:
			}
			return
		}
		if !ok {
			return
		}
		select {
		case p.ch <- b:
		case <-ctx.Done():
			return
		}
	}
}

func (p *batchPrefetcher) Next() (ingest.Batch, bool) {
	b, ok := <-p.ch
	return b, ok
}

// Err returns the terminal load error, if the producer stopped because of
// one rather than running out of input.
func (p *batchPrefetcher) Err() error {
	select {
	case err := <-p.errCh:
		return err
	default:
		return nil
	}
}

func (p *batchPrefetcher) Close() { p.cancel() }

// localizeOne maps a single measurement to a city, applying the Germany
// bounding-box pre-filter and dropping invalid or unlocatable readings.
func localizeOne(locator *geo.Locator, seqID int64, m ingest.Measurement) (aggregate.LocalizedMeasurement, bool) {
	if m.P1 < 0 || m.P2 < 0 {
		return aggregate.LocalizedMeasurement{}, false
	}
	lat, lng := float64(m.Latitude), float64(m.Longitude)
	if !geo.InGermanyBoundingBox(lat, lng) {
		return aggregate.LocalizedMeasurement{}, false
	}
	cityID, ok := locator.LocalizeCity(lat, lng)
	if !ok {
		return aggregate.LocalizedMeasurement{}, false
	}
	return aggregate.LocalizedMeasurement{
		BatchSeqID:       seqID,
		CityID:           cityID,
		TimestampSeconds: m.TimestampSeconds(),
		P1:               m.P1,
		P2:               m.P2,
	}, true
}

// localizeMeasurements localizes ms in parallel, bounded by workers, and
// restores input order before returning — the only place in the pipeline
// where more than one goroutine touches shared state (the locator's
// per-region caches, which are safe for concurrent use).
func localizeMeasurements(ctx context.Context, locator *geo.Locator, seqID int64, ms []ingest.Measurement, workers int) []aggregate.LocalizedMeasurement {
	hits := make([]aggregate.LocalizedMeasurement, len(ms))
	ok := make([]bool, len(ms))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range ms {
		i := i
		g.Go(func() error {
			hits[i], ok[i] = localizeOne(locator, seqID, ms[i])
			return nil
		})
	}
	_ = g.Wait()

	out := make([]aggregate.LocalizedMeasurement, 0, len(ms))
	for i, v := range ok {
		if v {
			out = append(out, hits[i])
		}
	}
	return out
}

// batchPairSource pulls localized (current, lastyear) slice pairs from the
// prefetched batch stream, one pair per batch.
type batchPairSource struct {
	ctx      context.Context
	prefetch *batchPrefetcher
	locator  *geo.Locator
	workers  int
}

func (s *batchPairSource) Next() (spliter.Pair[[]aggregate.LocalizedMeasurement, []aggregate.LocalizedMeasurement], bool) {
	b, ok := s.prefetch.Next()
	if !ok {
		return spliter.Pair[[]aggregate.LocalizedMeasurement, []aggregate.LocalizedMeasurement]{}, false
	}
	cur := localizeMeasurements(s.ctx, s.locator, b.SeqID, b.Current, s.workers)
	last := localizeMeasurements(s.ctx, s.locator, b.SeqID, b.LastYear, s.workers)
	return spliter.Pair[[]aggregate.LocalizedMeasurement, []aggregate.LocalizedMeasurement]{First: cur, Second: last}, true
}

// preAggregateSource folds a time-partitioner's buckets into
// PreAggregateData values, one per bucket.
type preAggregateSource struct {
	p *partition.Partitioner[aggregate.LocalizedMeasurement]
}

func (s *preAggregateSource) Next() (aggregate.PreAggregateData, bool) {
	b, ok := s.p.Next()
	if !ok {
		return aggregate.PreAggregateData{}, false
	}
	return aggregate.PreAggregate(b.Items), true
}

func timestampOf(m aggregate.LocalizedMeasurement) int64 { return m.TimestampSeconds }

// Pipeline wires the full core together: prefetch, parallel localization,
// the splitter back into current/lastyear streams, 5-minute partitioning,
// pre-aggregation, and the sliding-window engine feeding the ranking fold.
type Pipeline struct {
	engine   *window.Engine[aggregate.PreAggregateData, aggregate.PreAggregateData, Cache, ingest.ResultQ1]
	prefetch *batchPrefetcher
}

// NewPipeline builds a Pipeline reading batches from source, localizing
// against locator, and ranking per cfg. benchmarkID tags every result.
func NewPipeline(ctx context.Context, source ingest.BatchSource, locator *geo.Locator, cfg Config, benchmarkID int64) *Pipeline {
	prefetch := startPrefetch(ctx, source, cfg.PrefetchDepth)
	pairs := &batchPairSource{ctx: ctx, prefetch: prefetch, locator: locator, workers: cfg.LocalizationWorkers}

	curLocalized, lastLocalized := spliter.Split[[]aggregate.LocalizedMeasurement, []aggregate.LocalizedMeasurement](pairs)
	curFlat := spliter.Flatten[aggregate.LocalizedMeasurement](curLocalized)
	lastFlat := spliter.Flatten[aggregate.LocalizedMeasurement](lastLocalized)

	curBuckets := partition.New[aggregate.LocalizedMeasurement](curFlat, cfg.BucketSeconds, timestampOf)
	lastBuckets := partition.New[aggregate.LocalizedMeasurement](lastFlat, cfg.BucketSeconds, timestampOf)

	curPre := &preAggregateSource{p: curBuckets}
	lastPre := &preAggregateSource{p: lastBuckets}

	fold := NewFold(cfg, locator.Cities(), benchmarkID)
	engine := window.New[aggregate.PreAggregateData, aggregate.PreAggregateData, Cache, ingest.ResultQ1](
		curPre, lastPre, cfg.WindowCurrentSize, cfg.WindowLastYearSize, fold,
	)

	return &Pipeline{engine: engine, prefetch: prefetch}
}

// Next returns the next ranked result, or false once either stream is
// exhausted.
func (p *Pipeline) Next() (ingest.ResultQ1, bool) {
	return p.engine.Next()
}

// Err surfaces a terminal load error from the batch producer, if any.
func (p *Pipeline) Err() error { return p.prefetch.Err() }

// Close signals the batch producer to stop; callers should call this when
// abandoning the pipeline before it runs dry.
func (p *Pipeline) Close() { p.prefetch.Close() }
