package ibs

import (
	"runtime"
	"sync"
)

// parallelFor splits [0, n) into contiguous chunks and runs fn on each in
// its own goroutine. Small ranges run inline.
func parallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// contribution is one element's share of the ring-averaged rate integrals.
type contribution struct {
	s, x, y float64
}

// accumulate evaluates f for every element concurrently and sums the
// results in element order so the total does not depend on scheduling.
func accumulate(n int, f func(i int) contribution) contribution {
	parts := make([]contribution, n)
	parallelFor(n, 16, func(start, end int) {
		for i := start; i < end; i++ {
			parts[i] = f(i)
		}
	})
	var sum contribution
	for _, p := range parts {
		sum.s += p.s
		sum.x += p.x
		sum.y += p.y
	}
	return sum
}
