// Package ingest defines the wire-contract types the core consumes and
// produces. Decoding these from the challenge server's protobuf stream, or
// replaying them from a file, is explicitly out of scope here: the core
// only needs the decoded shapes and a source of them.
package ingest

import "google.golang.org/protobuf/types/known/timestamppb"

// Point is a single polygon vertex, longitude first to match the wire
// format.
type Point struct {
	Lon float64
	Lat float64
}

// Polygon is a single closed ring of points.
type Polygon struct {
	Points []Point
}

// Location is one zipcode area: a city name, a handful of descriptive
// fields carried through unchanged, and the polygon(s) that make up its
// area (a zipcode region is occasionally split into disjoint polygons).
type Location struct {
	Zipcode    string
	City       string
	Qkm        float64
	Population int32
	Polygons   []Polygon
}

// Locations is the full catalog as read from the location file.
type Locations struct {
	Locations []Location
}

// Measurement is one sensor reading as received from the feed.
type Measurement struct {
	Timestamp *timestamppb.Timestamp
	Latitude  float32
	Longitude float32
	P1        float32 // PM10, µg/m³
	P2        float32 // PM2.5, µg/m³
}

// TimestampSeconds returns the measurement's timestamp truncated to whole
// seconds, or 0 if the timestamp is unset.
func (m Measurement) TimestampSeconds() int64 {
	if m.Timestamp == nil {
		return 0
	}
	return m.Timestamp.GetSeconds()
}

// Batch is one unit of work from the feed: a sequence id, the measurements
// for the current year and the same calendar window a year earlier, and a
// flag marking the final batch of a benchmark run.
type Batch struct {
	SeqID    int64
	Last     bool
	Current  []Measurement
	LastYear []Measurement
}

// TopKCity is one ranked entry in a ResultQ1.
type TopKCity struct {
	Position              int32
	City                  string
	CurrentAQIP1          int32
	CurrentAQIP2          int32
	AverageAQIImprovement int32
}

// ResultQ1 is the per-batch output of the core.
type ResultQ1 struct {
	BenchmarkID   int64
	BatchSeqID    int64
	TopKImproved  []TopKCity
}
