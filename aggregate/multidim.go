package aggregate

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rz790610-bit/xilian-platform/clock"
)

// Sample is a single timestamped sensor reading, tagged with an
// unordered set of dimension labels. Timestamp is monotonic
// milliseconds; Tags are canonicalised into a TagKey at ingest.
//
// SampleID is ingestion metadata only: MultiDimAggregator.Add assigns it
// a monotonically increasing value on ingest for deduplication
// diagnostics (surfaced through Stats() and WithObserver), and a
// caller-supplied value is ignored. It never participates in
// aggregation or equality.
type Sample struct {
	Timestamp int64             `json:"timestamp"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags"`
	SampleID  uint64            `json:"sample_id,omitempty"`
}

// entry is one tag-key's independently-lockable aggregator cell.
// MultiDimAggregator owns entries exclusively; callers only ever see
// snapshots taken under the entry's lock, never a live reference into
// its state.
type entry struct {
	mu  sync.RWMutex
	agg *WindowedAggregator
}

// HealthSnapshot is a point-in-time ambient health report over a
// MultiDimAggregator, timestamped through the injected Clock so it
// remains deterministically testable.
type HealthSnapshot struct {
	TrackedKeys       int       `json:"tracked_keys"`
	TotalSamples      uint64    `json:"total_samples"`
	OldestWindowStart int64     `json:"oldest_window_start"`
	AsOf              time.Time `json:"as_of"`
}

// MultiDimAggregator demultiplexes a tagged sample stream into one
// independent WindowedAggregator per canonicalised TagKey. Different
// keys progress independently: mutation of one key's aggregator never
// blocks mutation of another's. This generalizes key-routing from
// "route to one of N channels" to "route to one of an unbounded,
// lazily-created set of per-key cells, each independently lockable."
type MultiDimAggregator struct {
	cfg          WindowConfig
	percentiles  []uint8
	maxCentroids int

	mu      sync.RWMutex // guards the entries map's structure only
	entries map[TagKey]*entry

	clock     clock.Clock
	sampleSeq uint64 // incremented via atomic: Add runs concurrently across entries' own locks, not m.mu
	onSample  func(Sample)
}

// NewMultiDimAggregator returns a MultiDimAggregator whose per-key
// WindowedAggregators all share cfg. cfg is validated immediately so a
// misconfiguration surfaces at construction, not on first Add.
func NewMultiDimAggregator(cfg WindowConfig, percentiles []uint8, maxCentroids int) (*MultiDimAggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MultiDimAggregator{
		cfg:          cfg,
		percentiles:  percentiles,
		maxCentroids: maxCentroids,
		entries:      make(map[TagKey]*entry),
		clock:        clock.Real,
	}, nil
}

// WithClock overrides the wall clock used for ambient bookkeeping
// (Stats() timestamps). Intended for deterministic tests.
func (m *MultiDimAggregator) WithClock(c clock.Clock) *MultiDimAggregator {
	m.clock = c
	return m
}

// WithObserver registers a callback invoked after every successfully
// ingested sample, without altering aggregation in any way: a
// side-effect hook (logging, metrics) layered onto the stream rather
// than a stage that transforms it.
func (m *MultiDimAggregator) WithObserver(fn func(Sample)) *MultiDimAggregator {
	m.onSample = fn
	return m
}

func (m *MultiDimAggregator) entryFor(key TagKey) *entry {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.entries[key]; ok {
		return e
	}
	agg, _ := NewWindowedAggregator(m.cfg, m.percentiles, m.maxCentroids) // cfg already validated in constructor
	e = &entry{agg: agg}
	m.entries[key] = e
	return e
}

// Add canonicalises sample.Tags into a TagKey, acquires or creates that
// key's entry, and ingests the sample under the entry's exclusive lock.
// Different keys never serialise against each other.
func (m *MultiDimAggregator) Add(sample Sample) {
	key := NewTagKey(sample.Tags)
	e := m.entryFor(key)

	e.mu.Lock()
	e.agg.Add(sample.Timestamp, sample.Value)
	e.mu.Unlock()
	sample.SampleID = atomic.AddUint64(&m.sampleSeq, 1)

	if m.onSample != nil {
		m.onSample(sample)
	}
}

// AddBatch is semantically equivalent to calling Add for every sample in
// order, but fans the batch out across a bounded worker pool (default
// runtime.NumCPU() workers) since distinct tag-keys progress
// independently and the per-key single-writer discipline is preserved
// by each entry's own lock. No ordering across keys is promised; within
// a key, samples from the same chunk are still applied in the order
// AddBatch received them because each worker drains its chunk
// sequentially.
func (m *MultiDimAggregator) AddBatch(samples []Sample) {
	m.AddBatchWithWorkers(samples, runtime.NumCPU())
}

// AddBatchWithWorkers is AddBatch with an explicit worker count.
func (m *MultiDimAggregator) AddBatchWithWorkers(samples []Sample, workers int) {
	if len(samples) == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(samples) {
		workers = len(samples)
	}

	chunks := chunkSamples(samples, workers)
	var wg sync.WaitGroup
	for _, chunk := range chunks {
		chunk := chunk
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, s := range chunk {
				m.Add(s)
			}
		}()
	}
	wg.Wait()
}

// chunkSamples splits samples into at most n contiguous chunks of
// roughly equal size, using a static target chunk count since the
// whole input is already in hand.
func chunkSamples(samples []Sample, n int) [][]Sample {
	if n <= 0 {
		n = 1
	}
	total := len(samples)
	base := total / n
	rem := total % n
	chunks := make([][]Sample, 0, n)
	idx := 0
	for i := 0; i < n && idx < total; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		chunks = append(chunks, samples[idx:idx+size])
		idx += size
	}
	return chunks
}

// Get returns a snapshot of the current window for key, if that key has
// ever been observed.
func (m *MultiDimAggregator) Get(key TagKey) (AggregateResult, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return AggregateResult{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.agg.Current()
}

// All iterates every known key and returns its full set of retained
// window snapshots. This snapshot is not atomic across keys: concurrent
// writers may advance other keys while iteration is in progress.
func (m *MultiDimAggregator) All() map[TagKey][]AggregateResult {
	m.mu.RLock()
	keys := make([]TagKey, 0, len(m.entries))
	entries := make([]*entry, 0, len(m.entries))
	for k, e := range m.entries {
		keys = append(keys, k)
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make(map[TagKey][]AggregateResult, len(keys))
	for i, k := range keys {
		entries[i].mu.RLock()
		out[k] = entries[i].agg.All()
		entries[i].mu.RUnlock()
	}
	return out
}

// Keys returns every tag-key currently tracked, in no particular order.
func (m *MultiDimAggregator) Keys() []TagKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]TagKey, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// Reset discards all tracked keys and their aggregator state.
func (m *MultiDimAggregator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[TagKey]*entry)
	atomic.StoreUint64(&m.sampleSeq, 0)
}

// Stats returns an ambient health snapshot: how many keys are tracked,
// how many samples have been ingested in total, the earliest window
// start still retained across every key, and when the snapshot was
// taken (via the injected Clock).
func (m *MultiDimAggregator) Stats() HealthSnapshot {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	var oldest int64
	haveOldest := false
	for _, e := range entries {
		e.mu.RLock()
		start, ok := e.agg.OldestWindowStart()
		e.mu.RUnlock()
		if ok && (!haveOldest || start < oldest) {
			oldest = start
			haveOldest = true
		}
	}

	return HealthSnapshot{
		TrackedKeys:       len(entries),
		TotalSamples:      atomic.LoadUint64(&m.sampleSeq),
		OldestWindowStart: oldest,
		AsOf:              m.clock.Now(),
	}
}
