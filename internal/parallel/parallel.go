// Package parallel provides a bounded fan-out helper for batch work that is
// independent across items, such as scoring a snapshot of listings.
package parallel

import "sync"

// ForEach runs fn(i) for every index in [0, n) using at most workers
// goroutines and blocks until all calls return. Callers keep determinism by
// writing results into per-index slots. workers < 1 falls back to serial.
func ForEach(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}

	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i := 0; i < n; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			fn(idx)
		}(i)
	}

	wg.Wait()
}
