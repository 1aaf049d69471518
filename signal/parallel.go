package signal

import "runtime"

// BatchResult reports one block's outcome in a parallel batch run. Exactly
// one of Filtered, Features, Anomaly is populated depending on the
// operation that produced it; Err is non-nil on a per-block failure and
// never aborts sibling blocks.
type BatchResult struct {
	Index    int
	Filtered []float64
	Features Features
	Anomaly  AnomalyResult
	Err      error
}

// ParallelBatchProcessor fans a fixed operation out across independent
// sample blocks using a bounded worker pool. Workers never suspend except
// by returning; a failing block is recorded at its index and never stops
// its siblings from completing.
type ParallelBatchProcessor struct {
	workers int
}

// NewParallelBatchProcessor builds a processor with the given worker
// count, defaulting to runtime.NumCPU() when workers <= 0.
func NewParallelBatchProcessor(workers int) *ParallelBatchProcessor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ParallelBatchProcessor{workers: workers}
}

// runIndexed fans fn out over [0,n) using the configured worker count and
// blocks until every index has run.
func (pbp *ParallelBatchProcessor) runIndexed(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := pbp.workers
	if workers > n {
		workers = n
	}

	indices := make(chan int, n)
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)

	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			for i := range indices {
				fn(i)
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}
}

// ProcessFilter applies spec to every block independently.
func (pbp *ParallelBatchProcessor) ProcessFilter(p *Processor, blocks [][]float64, spec FilterSpec) []BatchResult {
	out := make([]BatchResult, len(blocks))
	pbp.runIndexed(len(blocks), func(i int) {
		filtered, err := p.ApplyFilter(blocks[i], spec)
		out[i] = BatchResult{Index: i, Filtered: filtered, Err: err}
	})
	return out
}

// ProcessFeatures extracts the full feature set from every block
// independently.
func (pbp *ParallelBatchProcessor) ProcessFeatures(p *Processor, blocks [][]float64) []BatchResult {
	out := make([]BatchResult, len(blocks))
	pbp.runIndexed(len(blocks), func(i int) {
		features, err := p.ExtractFeatures(blocks[i])
		out[i] = BatchResult{Index: i, Features: features, Err: err}
	})
	return out
}

// ProcessZScoreAnomaly scores values[i] against blocks[i] as its history,
// independently per block.
func (pbp *ParallelBatchProcessor) ProcessZScoreAnomaly(p *Processor, blocks [][]float64, values []float64, threshold float64) []BatchResult {
	n := len(blocks)
	out := make([]BatchResult, n)
	pbp.runIndexed(n, func(i int) {
		out[i] = BatchResult{Index: i, Anomaly: p.DetectAnomalyZScore(blocks[i], values[i], threshold)}
	})
	return out
}
