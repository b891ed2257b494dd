// Package partition buckets a time-ordered pull-sequence into fixed-width
// time windows, emitting an empty bucket for any window that had no
// elements so that downstream consumers always see contiguous bucket
// indices.
package partition

import "github.com/maximbalsacq/aqiwindow/internal/spliter"

// Bucket is one fixed-width time window's worth of items. Index counts
// windows emitted by this Partitioner, so consecutive buckets always
// differ by exactly one, even across an empty gap.
type Bucket[T any] struct {
	Index int64
	Items []T
}

// TimeFunc extracts the partitioning timestamp, in seconds, from an item.
type TimeFunc[T any] func(item T) int64

// Partitioner buckets a time-ordered upstream sequence into fixed-width
// windows of width seconds. The upstream must be non-decreasing in the
// value TimeFunc extracts; Partitioner does not sort.
//
// Window boundaries are phase-aligned to the stream's first timestamp,
// not to epoch multiples of width: the first window ends at
// first_timestamp + width, and every subsequent window end is the
// previous end plus width. A gap in the data advances the window end
// one width at a time, emitting an empty bucket for each step that still
// doesn't reach the next measurement, which keeps the bucket cadence
// fixed across gaps instead of resetting it.
type Partitioner[T any] struct {
	upstream spliter.Source[T]
	timeFn   TimeFunc[T]
	width    int64

	started     bool
	currentEnd  int64
	havePending bool
	pending     T
	exhausted   bool
	nextIndex   int64
}

// New builds a Partitioner over upstream with the given bucket width in
// seconds.
func New[T any](upstream spliter.Source[T], width int64, timeFn TimeFunc[T]) *Partitioner[T] {
	if width <= 0 {
		panic("partition: bucket width must be positive")
	}
	return &Partitioner[T]{upstream: upstream, timeFn: timeFn, width: width}
}

// Next returns the next bucket in index order, including empty buckets for
// any gap between the previous item's window and the next item's window.
func (p *Partitioner[T]) Next() (Bucket[T], bool) {
	if p.exhausted && !p.havePending {
		return Bucket[T]{}, false
	}

	if !p.started {
		p.started = true
		item, ok := p.upstream.Next()
		if !ok {
			p.exhausted = true
			return Bucket[T]{}, false
		}
		p.pending = item
		p.havePending = true
		p.currentEnd = p.timeFn(item) + p.width
	} else {
		p.currentEnd += p.width
	}

	var items []T
	for p.havePending && p.timeFn(p.pending) < p.currentEnd {
		items = append(items, p.pending)
		item, ok := p.upstream.Next()
		if !ok {
			p.havePending = false
			p.exhausted = true
			break
		}
		p.pending = item
	}

	idx := p.nextIndex
	p.nextIndex++
	return Bucket[T]{Index: idx, Items: items}, true
}

// Collect drains a Partitioner into a slice of buckets.
func Collect[T any](p *Partitioner[T]) []Bucket[T] {
	out := []Bucket[T]{}
	for {
		b, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}
