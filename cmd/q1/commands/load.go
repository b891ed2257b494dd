package commands

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/maximbalsacq/aqiwindow/internal/ingest"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// jsonLocationSource loads a Locations catalog from a JSON file. Real
// location files are distributed as protobuf; JSON is a convenience
// format for running the core against hand-written or converted fixtures
// without pulling in a decoder for the wire format.
type jsonLocationSource struct {
	path string
}

func newJSONLocationSource(path string) ingest.LocationSource {
	return jsonLocationSource{path: path}
}

func (s jsonLocationSource) Load(ctx context.Context) (ingest.Locations, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ingest.Locations{}, &ingest.LoadError{Kind: ingest.FileOpenError, Path: s.path, Err: err}
	}
	var locations ingest.Locations
	if err := json.Unmarshal(data, &locations); err != nil {
		return ingest.Locations{}, &ingest.LoadError{Kind: ingest.FileDecodeError, Path: s.path, Err: err}
	}
	return locations, nil
}

// jsonBatch mirrors ingest.Batch with plain Unix-second timestamps, since
// the timestamppb wrapper doesn't round-trip through encoding/json the
// way the wire codec expects.
type jsonMeasurement struct {
	TimestampSeconds int64   `json:"timestamp_seconds"`
	Latitude         float32 `json:"latitude"`
	Longitude        float32 `json:"longitude"`
	P1               float32 `json:"p1"`
	P2               float32 `json:"p2"`
}

type jsonBatch struct {
	SeqID    int64             `json:"seq_id"`
	Last     bool              `json:"last"`
	Current  []jsonMeasurement `json:"current"`
	LastYear []jsonMeasurement `json:"last_year"`
}

// jsonBatchSource loads every batch from a single JSON file up front and
// replays them in file order. Fine for the fixture sizes this command is
// meant to run against; a real deployment would stream batches instead.
type jsonBatchSource struct {
	path    string
	loaded  bool
	batches []ingest.Batch
	pos     int
}

func newJSONBatchSource(path string) ingest.BatchSource {
	return &jsonBatchSource{path: path}
}

func (s *jsonBatchSource) Next(ctx context.Context) (ingest.Batch, error, bool) {
	if err := ctx.Err(); err != nil {
		return ingest.Batch{}, err, false
	}
	if !s.loaded {
		if err := s.load(); err != nil {
			return ingest.Batch{}, err, false
		}
	}
	if s.pos >= len(s.batches) {
		return ingest.Batch{}, nil, false
	}
	b := s.batches[s.pos]
	s.pos++
	return b, nil, true
}

func (s *jsonBatchSource) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return &ingest.LoadError{Kind: ingest.FileOpenError, Path: s.path, Err: err}
	}
	var raw []jsonBatch
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ingest.LoadError{Kind: ingest.FileDecodeError, Path: s.path, Err: err}
	}
	s.batches = make([]ingest.Batch, len(raw))
	for i, b := range raw {
		s.batches[i] = ingest.Batch{
			SeqID:    b.SeqID,
			Last:     b.Last,
			Current:  toMeasurements(b.Current),
			LastYear: toMeasurements(b.LastYear),
		}
	}
	s.loaded = true
	return nil
}

func timestampFromSeconds(sec int64) *timestamppb.Timestamp {
	return timestamppb.New(time.Unix(sec, 0).UTC())
}

func toMeasurements(in []jsonMeasurement) []ingest.Measurement {
	out := make([]ingest.Measurement, len(in))
	for i, m := range in {
		out[i] = ingest.Measurement{
			Timestamp: timestampFromSeconds(m.TimestampSeconds),
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			P1:        m.P1,
			P2:        m.P2,
		}
	}
	return out
}
