package aggregate

// StreamAggregator maintains a single sliding window over a stream of
// (timestamp, value) pairs and emits a snapshot whenever the stream
// crosses a slide boundary, making it suited to unary streaming
// queries where a caller wants "the last size_ms, refreshed every
// slide_ms" without the key-fanout machinery of MultiDimAggregator.
//
// The emission gate (only emit once ts - last_emit_ms >= slide_ms) is
// a leading-edge-cooldown shape, generalized from a wall-clock
// Clock.Now() comparison to the caller-supplied sample timestamp.
//
// StreamAggregator is not safe for concurrent mutation.
type StreamAggregator struct {
	sizeMs  int64
	slideMs int64

	ring []ringPoint
	acc  *Accumulator

	lastEmitMs int64
	haveEmit   bool
}

// NewStreamAggregator returns a StreamAggregator retaining sizeMs of
// history and emitting at most once per slideMs.
func NewStreamAggregator(sizeMs, slideMs int64) (*StreamAggregator, error) {
	if sizeMs <= 0 {
		return nil, &InvalidWindowConfigError{Reason: "StreamAggregator requires sizeMs > 0"}
	}
	if slideMs <= 0 {
		return nil, &InvalidWindowConfigError{Reason: "StreamAggregator requires slideMs > 0"}
	}
	return &StreamAggregator{
		sizeMs:  sizeMs,
		slideMs: slideMs,
		acc:     NewAccumulator(),
	}, nil
}

// Process appends (ts, v), evicts any ring entries that have fallen out
// of the sizeMs retention window, and returns a snapshot stamped with
// [ts-sizeMs, ts] if a slide boundary has been crossed. The first call
// never emits: it only establishes the initial emission clock.
func (s *StreamAggregator) Process(ts int64, v float64) (AggregateResult, bool) {
	s.ring = append(s.ring, ringPoint{ts: ts, value: v})
	s.acc.Add(v)

	horizon := ts - s.sizeMs
	evicted := 0
	for evicted < len(s.ring) && s.ring[evicted].ts < horizon {
		s.acc.Remove(s.ring[evicted].value)
		evicted++
	}
	if evicted > 0 {
		s.ring = s.ring[evicted:]
	}

	if !s.haveEmit {
		s.lastEmitMs = ts
		s.haveEmit = true
		return AggregateResult{}, false
	}

	if ts-s.lastEmitMs >= s.slideMs {
		s.lastEmitMs = ts
		r := s.acc.Snapshot()
		r.WindowStart = ts - s.sizeMs
		r.WindowEnd = ts
		return r, true
	}
	return AggregateResult{}, false
}

// Flush snapshots the current state, then clears the ring and
// reinitialises the accumulator for a fresh window.
func (s *StreamAggregator) Flush() AggregateResult {
	r := s.acc.Snapshot()
	if len(s.ring) > 0 {
		r.WindowStart = s.ring[0].ts
		r.WindowEnd = s.ring[len(s.ring)-1].ts
	}
	s.ring = nil
	s.acc = NewAccumulator()
	s.haveEmit = false
	return r
}

// BufferSize returns the number of samples currently retained in the
// sliding ring.
func (s *StreamAggregator) BufferSize() int {
	return len(s.ring)
}
