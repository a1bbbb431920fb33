package dynamo

import "sync"

// ParallelFor splits [0, n) into at most workers contiguous chunks and runs fn
// on each chunk concurrently. Small ranges run inline.
func ParallelFor(n, workers, minChunk int, fn func(worker, start, end int)) {
	if workers <= 1 || n <= minChunk {
		fn(0, 0, n)
		return
	}

	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(id, s, e int) {
			defer wg.Done()
			fn(id, s, e)
		}(w, start, end)
	}

	wg.Wait()
}
