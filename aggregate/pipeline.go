package aggregate

import "sort"

// stageKind discriminates a Pipeline stage's variant. Stages are
// modeled as a tagged struct rather than an interface hierarchy with
// five implementations, matching this module's "dispatch by variant
// inside a flat match" convention for routing, generalized here from
// "pick one handler" to "run this stage, then continue."
type stageKind int

const (
	stageFilter stageKind = iota
	stageMap
	stageGroupBy
	stageAggregate
	stageWindow
)

type stage struct {
	kind stageKind

	filter func(Sample) bool
	mapper func(Sample) Sample
	keyFn  func(Sample) string

	percentiles []uint8
	windowCfg   WindowConfig
}

// Pipeline is a sequential, declarative composition of stages applied
// to a batch of samples: Filter, Map, GroupBy, Aggregate, and Window.
// Filter and Map transform the in-flight sample sequence. Aggregate
// reduces the current sequence to a single AggregateResult, appended to
// the pending result list. Window routes the current sequence through a
// WindowedAggregator and replaces the pending result list with its
// window snapshots. GroupBy partitions the remaining stages by a key
// function: each partition runs the rest of the pipeline independently
// and results are concatenated in key-sorted order.
type Pipeline struct {
	stages []stage
}

// NewPipeline returns an empty Pipeline ready for stage configuration.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Filter appends a stage that keeps only samples for which pred
// returns true.
func (p *Pipeline) Filter(pred func(Sample) bool) *Pipeline {
	p.stages = append(p.stages, stage{kind: stageFilter, filter: pred})
	return p
}

// Map appends a stage that transforms every sample with fn.
func (p *Pipeline) Map(fn func(Sample) Sample) *Pipeline {
	p.stages = append(p.stages, stage{kind: stageMap, mapper: fn})
	return p
}

// GroupBy appends a stage that partitions the remaining pipeline by
// keyFn(sample). Every subsequent stage runs once per partition; the
// partitions' results are concatenated in ascending key order.
func (p *Pipeline) GroupBy(keyFn func(Sample) string) *Pipeline {
	p.stages = append(p.stages, stage{kind: stageGroupBy, keyFn: keyFn})
	return p
}

// Aggregate appends a stage that reduces the current sample sequence to
// a single AggregateResult via an Accumulator. When percentiles is
// non-empty, a TDigest is built over the same sequence to populate the
// result's Percentiles map.
func (p *Pipeline) Aggregate(percentiles ...uint8) *Pipeline {
	p.stages = append(p.stages, stage{kind: stageAggregate, percentiles: percentiles})
	return p
}

// Window appends a stage that routes the current sample sequence
// through a WindowedAggregator configured by cfg, replacing the pending
// result list with that aggregator's All() snapshots.
func (p *Pipeline) Window(cfg WindowConfig) *Pipeline {
	p.stages = append(p.stages, stage{kind: stageWindow, windowCfg: cfg})
	return p
}

// Execute runs the pipeline over samples and returns the accumulated
// results.
func (p *Pipeline) Execute(samples []Sample) ([]AggregateResult, error) {
	return runStages(samples, p.stages)
}

func runStages(samples []Sample, stages []stage) ([]AggregateResult, error) {
	cur := samples
	var results []AggregateResult

	for i, st := range stages {
		switch st.kind {
		case stageFilter:
			cur = filterSamples(cur, st.filter)

		case stageMap:
			cur = mapSamples(cur, st.mapper)

		case stageAggregate:
			r, err := aggregateSamples(cur, st.percentiles)
			if err != nil {
				return nil, err
			}
			results = append(results, r)

		case stageWindow:
			wa, err := NewWindowedAggregator(st.windowCfg, nil, 0)
			if err != nil {
				return nil, err
			}
			for _, s := range cur {
				wa.Add(s.Timestamp, s.Value)
			}
			results = wa.All()

		case stageGroupBy:
			return runGroupBy(cur, st.keyFn, stages[i+1:])
		}
	}
	return results, nil
}

func runGroupBy(samples []Sample, keyFn func(Sample) string, remaining []stage) ([]AggregateResult, error) {
	groups := make(map[string][]Sample)
	for _, s := range samples {
		k := keyFn(s)
		groups[k] = append(groups[k], s)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []AggregateResult
	for _, k := range keys {
		sub, err := runStages(groups[k], remaining)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func filterSamples(samples []Sample, pred func(Sample) bool) []Sample {
	if pred == nil {
		return samples
	}
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

func mapSamples(samples []Sample, fn func(Sample) Sample) []Sample {
	if fn == nil {
		return samples
	}
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[i] = fn(s)
	}
	return out
}

func aggregateSamples(samples []Sample, percentiles []uint8) (AggregateResult, error) {
	acc := NewAccumulator()
	var digest *TDigest
	if len(percentiles) > 0 {
		for _, p := range percentiles {
			if p > 100 {
				return AggregateResult{}, &UnsupportedAggregationError{Kind: AggregationType{Kind: AggPercentile, Percentile: p}}
			}
		}
		digest = NewTDigest(100)
	}

	for _, s := range samples {
		acc.Add(s.Value)
		if digest != nil {
			digest.Add(s.Value, 1)
		}
	}

	r := acc.Snapshot()
	if len(samples) > 0 {
		r.WindowStart = samples[0].Timestamp
		r.WindowEnd = samples[len(samples)-1].Timestamp
	}
	if digest != nil {
		r.Percentiles = make(map[uint8]float64, len(percentiles))
		for _, p := range percentiles {
			r.Percentiles[p] = digest.Percentile(float64(p))
		}
		r.AggregationKinds = withPercentileKinds(r.AggregationKinds, percentiles)
	}
	return r, nil
}
