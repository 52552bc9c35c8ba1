package engine

import (
	"time"

	"github.com/flowmesh/flowmesh/dag"
)

// backoffDelay computes the delay before the k-th retry attempt (k starting
// at 1), per spec.md §3's three schedules:
//
//	none:        D
//	linear:      D * k
//	exponential: D * 2^(k-1)
//
// This is a fixed, deterministic schedule rather than cenkalti/backoff's
// jittered exponential default, because spec.md §8.7 requires exact spacing
// between attempts, not a randomized one.
func backoffDelay(d time.Duration, backoff dag.Backoff, k int) time.Duration {
	switch backoff {
	case dag.BackoffLinear:
		return d * time.Duration(k)
	case dag.BackoffExponential:
		return d * time.Duration(uint64(1)<<uint(k-1))
	default:
		return d
	}
}
