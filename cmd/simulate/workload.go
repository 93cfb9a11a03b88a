package main

import (
	"math/rand"
	"sort"
)

// workloadPoint is one synthetic data point: a generation time and how
// long its arrival lagged that generation time. Ordering by arrival time
// (not generation time) is what produces out-of-order ingest.
type workloadPoint struct {
	gen     int64
	delay   int64
	arrival float64
}

// generateWorkload builds n points with generation times spaced by
// interval and a uniformly jittered arrival delay in [0, maxDelay],
// returned in arrival order. This is a minimal synthetic generator to
// exercise the engines end-to-end; it is not a faithful workload model
// and deliberately stays out of the library packages.
func generateWorkload(n int, interval float64, maxDelay int64, seed int64) []workloadPoint {
	rng := rand.New(rand.NewSource(seed))
	points := make([]workloadPoint, n)
	for i := 0; i < n; i++ {
		gen := int64(float64(i) * interval)
		var delay int64
		if maxDelay > 0 {
			delay = rng.Int63n(maxDelay + 1)
		}
		points[i] = workloadPoint{gen: gen, delay: delay, arrival: float64(gen) + float64(delay)}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].arrival < points[j].arrival })
	return points
}
