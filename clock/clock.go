// Package clock re-exports the injectable time source used by the
// aggregation package so wall-clock bookkeeping (the timestamps of
// MultiDimAggregator health snapshots) stays deterministically testable
// without every caller importing clockz directly.
package clock

import "github.com/zoobzio/clockz"

// Clock provides time operations for deterministic testing.
type Clock = clockz.Clock

// Timer represents a single event timer.
type Timer = clockz.Timer

// Ticker delivers ticks at intervals.
type Ticker = clockz.Ticker

// Real is the default Clock backed by the standard library.
var Real Clock = clockz.RealClock
