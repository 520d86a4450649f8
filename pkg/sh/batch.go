package sh

import (
	"runtime"
	"sync"
)

// EvalBatch evaluates one coefficient set per point for a single view
// direction, fanning the points out across worker goroutines. Points are
// independent, so the work splits into contiguous chunks with no shared
// mutable state. If workers is 0 or negative, GOMAXPROCS is used.
func EvalBatch(coeffs [][]float32, dir [3]float64, degree int, workers int) [][3]float64 {
	out := make([][3]float64, len(coeffs))
	if len(coeffs) == 0 {
		return out
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(coeffs) {
		workers = len(coeffs)
	}

	chunk := (len(coeffs) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(coeffs); start += chunk {
		end := start + chunk
		if end > len(coeffs) {
			end = len(coeffs)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = Eval(coeffs[i], dir, degree)
			}
		}(start, end)
	}
	wg.Wait()
	return out
}
