package aggregate

import "sort"

// WindowKind selects how a WindowedAggregator buckets incoming samples.
type WindowKind int

const (
	// Tumbling windows are fixed-size, non-overlapping buckets.
	Tumbling WindowKind = iota
	// Sliding windows advance by a slide step smaller than their size;
	// a sample is routed into a single slide-indexed bucket (see
	// WindowConfig doc for the overlap caveat).
	Sliding
	// Session windows are bounded by gaps in per-key activity rather
	// than wall-clock alignment.
	Session
)

// WindowConfig configures a WindowedAggregator. Tumbling requires
// SizeMs > 0 and ignores SlideMs/SessionGapMs. Sliding requires
// SizeMs > 0 and SlideMs > 0 (SlideMs <= SizeMs is permitted and is the
// common case). Session requires SessionGapMs > 0 and ignores SizeMs.
//
// Routing a sample into a single slide-indexed bucket does not produce
// overlapping window results by itself: true overlapping sliding
// windows require feeding each sample into size/slide offset
// aggregators, or using StreamAggregator.
type WindowConfig struct {
	Kind         WindowKind `json:"kind"`
	SizeMs       int64      `json:"size_ms"`
	SlideMs      int64      `json:"slide_ms,omitempty"`
	SessionGapMs int64      `json:"session_gap_ms,omitempty"`
	MaxWindows   int        `json:"max_windows"`
}

// Validate reports whether the configuration satisfies the invariants
// for its Kind.
func (c WindowConfig) Validate() error {
	switch c.Kind {
	case Tumbling:
		if c.SizeMs <= 0 {
			return &InvalidWindowConfigError{Reason: "tumbling window requires SizeMs > 0"}
		}
	case Sliding:
		if c.SizeMs <= 0 {
			return &InvalidWindowConfigError{Reason: "sliding window requires SizeMs > 0"}
		}
		if c.SlideMs <= 0 {
			return &InvalidWindowConfigError{Reason: "sliding window requires SlideMs > 0"}
		}
	case Session:
		if c.SessionGapMs <= 0 {
			return &InvalidWindowConfigError{Reason: "session window requires SessionGapMs > 0"}
		}
	default:
		return &InvalidWindowConfigError{Reason: "unknown window kind"}
	}
	if c.MaxWindows <= 0 {
		return &InvalidWindowConfigError{Reason: "MaxWindows must be positive"}
	}
	return nil
}

// evictionUnitMs is the per-window span used to compute the retention
// horizon (max_windows * unit). Tumbling/Sliding use SizeMs directly;
// Session windows ignore SizeMs per the data model, so the session gap
// stands in as the natural "window span" unit for eviction purposes.
func (c WindowConfig) evictionUnitMs() int64 {
	if c.Kind == Session {
		return c.SessionGapMs
	}
	return c.SizeMs
}

type ringPoint struct {
	ts    int64
	value float64
}

// window is one time bucket's accumulated state.
type window struct {
	start, end int64
	acc        *Accumulator
	ring       []ringPoint // every admitted (ts, value), kept for all kinds
	digest     *TDigest
}

// WindowedAggregator maintains a set of time windows for a single
// (already demultiplexed) sample stream, keyed by window-start, and
// routes each incoming sample into the correct bucket.
//
// WindowedAggregator is not safe for concurrent mutation: it is a
// single-threaded cooperative primitive, normally owned exclusively by
// one MultiDimAggregator entry.
type WindowedAggregator struct {
	cfg WindowConfig

	windows map[int64]*window
	starts  []int64 // kept sorted ascending; small relative to MaxWindows

	currentSessionStart int64
	lastTs              int64
	haveLast            bool

	percentiles  []uint8
	maxCentroids int
}

// NewWindowedAggregator validates cfg and returns a ready aggregator.
// When percentiles is non-empty, each window also maintains a TDigest
// (bounded to maxCentroids, default 100 when <= 0) so Current, All and
// Range can report percentile estimates.
func NewWindowedAggregator(cfg WindowConfig, percentiles []uint8, maxCentroids int) (*WindowedAggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if maxCentroids <= 0 {
		maxCentroids = 100
	}
	return &WindowedAggregator{
		cfg:          cfg,
		windows:      make(map[int64]*window),
		percentiles:  percentiles,
		maxCentroids: maxCentroids,
	}, nil
}

func (w *WindowedAggregator) windowStartFor(ts int64) int64 {
	switch w.cfg.Kind {
	case Tumbling:
		return floorDiv(ts, w.cfg.SizeMs) * w.cfg.SizeMs
	case Sliding:
		return floorDiv(ts, w.cfg.SlideMs) * w.cfg.SlideMs
	case Session:
		if w.haveLast && ts-w.lastTs <= w.cfg.SessionGapMs {
			return w.currentSessionStart
		}
		return ts
	default:
		return ts
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (w *WindowedAggregator) getOrCreate(start int64, ts int64) *window {
	win, ok := w.windows[start]
	if !ok {
		end := start + w.cfg.SizeMs
		if w.cfg.Kind == Session {
			end = ts
		}
		win = &window{start: start, end: end, acc: NewAccumulator()}
		if len(w.percentiles) > 0 {
			win.digest = NewTDigest(w.maxCentroids)
		}
		w.windows[start] = win
		w.insertSorted(start)
	}
	return win
}

func (w *WindowedAggregator) insertSorted(start int64) {
	idx := sort.Search(len(w.starts), func(i int) bool { return w.starts[i] >= start })
	w.starts = append(w.starts, 0)
	copy(w.starts[idx+1:], w.starts[idx:])
	w.starts[idx] = start
}

// Add routes a sample into the appropriate window, creating it lazily if
// needed, then evicts any window that has fallen outside the retention
// horizon relative to the newest observed timestamp.
//
// Samples whose timestamp lands before an already-evicted window's
// start are dropped silently, matching the out-of-order handling
// documented for this aggregator.
func (w *WindowedAggregator) Add(ts int64, v float64) {
	if w.haveLast && ts < w.oldestRetainedStart() {
		return
	}

	start := w.windowStartFor(ts)
	win := w.getOrCreate(start, ts)
	win.ring = append(win.ring, ringPoint{ts: ts, value: v})
	win.acc.Add(v)
	if win.digest != nil {
		win.digest.Add(v, 1)
	}
	if w.cfg.Kind == Session {
		w.currentSessionStart = start
		win.end = ts
	}

	if !w.haveLast || ts > w.lastTs {
		w.lastTs = ts
	}
	w.haveLast = true

	w.evict()
}

func (w *WindowedAggregator) oldestRetainedStart() int64 {
	unit := w.cfg.evictionUnitMs()
	return w.lastTs - int64(w.cfg.MaxWindows)*unit
}

func (w *WindowedAggregator) evict() {
	horizon := w.oldestRetainedStart()
	kept := w.starts[:0:0]
	for _, start := range w.starts {
		if start < horizon {
			delete(w.windows, start)
			continue
		}
		kept = append(kept, start)
	}
	w.starts = kept
}

func (w *WindowedAggregator) snapshot(win *window) AggregateResult {
	r := win.acc.Snapshot()
	r.WindowStart = win.start
	r.WindowEnd = win.end
	if win.digest != nil && len(w.percentiles) > 0 {
		r.Percentiles = make(map[uint8]float64, len(w.percentiles))
		for _, p := range w.percentiles {
			r.Percentiles[p] = win.digest.Percentile(float64(p))
		}
		r.AggregationKinds = withPercentileKinds(r.AggregationKinds, w.percentiles)
	}
	return r
}

// Current returns the highest-start window's snapshot, if any window
// exists.
func (w *WindowedAggregator) Current() (AggregateResult, bool) {
	if len(w.starts) == 0 {
		return AggregateResult{}, false
	}
	latest := w.starts[len(w.starts)-1]
	return w.snapshot(w.windows[latest]), true
}

// All returns every retained window's snapshot in ascending start order.
func (w *WindowedAggregator) All() []AggregateResult {
	out := make([]AggregateResult, 0, len(w.starts))
	for _, start := range w.starts {
		out = append(out, w.snapshot(w.windows[start]))
	}
	return out
}

// Range returns snapshots for windows whose start lies in [from, to).
func (w *WindowedAggregator) Range(from, to int64) []AggregateResult {
	lo := sort.Search(len(w.starts), func(i int) bool { return w.starts[i] >= from })
	var out []AggregateResult
	for _, start := range w.starts[lo:] {
		if start >= to {
			break
		}
		out = append(out, w.snapshot(w.windows[start]))
	}
	return out
}

// OldestWindowStart returns the start of the earliest window still
// retained, if any window exists.
func (w *WindowedAggregator) OldestWindowStart() (int64, bool) {
	if len(w.starts) == 0 {
		return 0, false
	}
	return w.starts[0], true
}

// Reset discards all window state.
func (w *WindowedAggregator) Reset() {
	w.windows = make(map[int64]*window)
	w.starts = nil
	w.currentSessionStart = 0
	w.lastTs = 0
	w.haveLast = false
}
