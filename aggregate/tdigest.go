package aggregate

import "sort"

// centroid is a single (mean, weight) summary point of a TDigest.
type centroid struct {
	mean   float64
	weight float64
}

// TDigest is a compressible, mergeable quantile sketch. It approximates
// the distribution of an unbounded stream of weighted values with a
// bounded number of centroids, trading exactness for a fixed memory
// footprint.
//
// This is the simplified bound-uniform variant described in the data
// model: compression greedily coalesces consecutive centroids (sorted
// by mean) while their combined weight stays at or below
// total_weight/max_centroids, rather than caio-go-tdigest's k-scale
// function over a Fenwick-indexed summary. The two are not
// interchangeable: this module's compression bound is uniform across
// the whole range, so accuracy is flat rather than concentrated at the
// tails. Accuracy target is +/-5% at the median and the 90th percentile
// on smooth distributions.
//
// A zero-value TDigest is not ready to use; construct one with
// NewTDigest.
type TDigest struct {
	centroids    []centroid // compressed, sorted by mean ascending
	buffer       []centroid // uncompressed tail awaiting compression
	totalWeight  float64
	maxCentroids int
}

// NewTDigest returns a TDigest that compresses once its compressed
// centroids plus its uncompressed buffer exceed 2*maxCentroids
// entries. maxCentroids must be
// positive; non-positive values are clamped to 1.
func NewTDigest(maxCentroids int) *TDigest {
	if maxCentroids < 1 {
		maxCentroids = 1
	}
	return &TDigest{maxCentroids: maxCentroids}
}

// Add records a value with the given weight (typically 1 for a single
// sample). Weights must be positive; non-positive weights are ignored.
func (t *TDigest) Add(value float64, weight float64) {
	if weight <= 0 {
		return
	}
	t.buffer = append(t.buffer, centroid{mean: value, weight: weight})
	t.totalWeight += weight

	if len(t.centroids)+len(t.buffer) > 2*t.maxCentroids {
		t.Compress()
	}
}

// Compress merges the uncompressed buffer into the centroid list and
// greedily coalesces consecutive centroids (sorted by mean) whose
// combined weight does not exceed total_weight/max_centroids. The
// merged mean is the weight-weighted average of the coalesced group.
func (t *TDigest) Compress() {
	if len(t.buffer) == 0 && len(t.centroids) <= t.maxCentroids {
		return
	}

	all := make([]centroid, 0, len(t.centroids)+len(t.buffer))
	all = append(all, t.centroids...)
	all = append(all, t.buffer...)
	t.buffer = t.buffer[:0]

	sort.Slice(all, func(i, j int) bool { return all[i].mean < all[j].mean })

	if t.totalWeight <= 0 || t.maxCentroids <= 0 {
		t.centroids = all
		return
	}
	bound := t.totalWeight / float64(t.maxCentroids)

	compressed := make([]centroid, 0, t.maxCentroids+1)
	var cur centroid
	have := false
	for _, c := range all {
		if !have {
			cur = c
			have = true
			continue
		}
		if cur.weight+c.weight <= bound {
			cur.mean = (cur.mean*cur.weight + c.mean*c.weight) / (cur.weight + c.weight)
			cur.weight += c.weight
			continue
		}
		compressed = append(compressed, cur)
		cur = c
	}
	if have {
		compressed = append(compressed, cur)
	}
	t.centroids = compressed
}

// Percentile estimates the value at percentile p (0-100). It treats
// centroid weights as a CDF, walking centroids in mean order until the
// cumulative weight reaches p/100 * total_weight and returning that
// centroid's mean. An empty digest returns 0.
func (t *TDigest) Percentile(p float64) float64 {
	if len(t.buffer) > 0 {
		t.Compress()
	}
	if len(t.centroids) == 0 || t.totalWeight <= 0 {
		return 0
	}
	if p <= 0 {
		return t.centroids[0].mean
	}
	if p >= 100 {
		return t.centroids[len(t.centroids)-1].mean
	}

	target := (p / 100) * t.totalWeight
	var cumulative float64
	for _, c := range t.centroids {
		cumulative += c.weight
		if cumulative >= target {
			return c.mean
		}
	}
	return t.centroids[len(t.centroids)-1].mean
}

// Merge folds other's centroids into t by re-adding each one, weight
// intact. The result is an approximation of the union of both digests'
// inputs, not an exact merge of compressed state.
func (t *TDigest) Merge(other *TDigest) {
	if other == nil {
		return
	}
	other.Compress()
	for _, c := range other.centroids {
		t.Add(c.mean, c.weight)
	}
}

// TotalWeight returns the sum of all weights added so far.
func (t *TDigest) TotalWeight() float64 { return t.totalWeight }

// CentroidCount returns the number of compressed centroids currently
// retained (excluding any uncompressed tail still in the buffer).
func (t *TDigest) CentroidCount() int { return len(t.centroids) }
