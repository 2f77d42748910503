package groundtrack

import "sync"

// WorkerPool runs a fixed number of goroutines over an indexed job range.
// Results land at their job index, so output order never depends on
// completion order.
type WorkerPool struct {
	workers int
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{workers: workers}
}

// Run calls fn for every index in [0, n) and returns the results in index
// order. The first error stops further jobs from being handed out and is
// returned with a nil slice.
func (wp *WorkerPool) Run(n int, fn func(i int) (GeoSample, error)) ([]GeoSample, error) {
	out := make([]GeoSample, n)

	if wp.workers == 1 || n < 2 {
		for i := 0; i < n; i++ {
			s, err := fn(i)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	jobs := make(chan int, wp.workers*2)
	stop := make(chan struct{})
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			close(stop)
		})
	}

	for w := 0; w < min(wp.workers, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s, err := fn(i)
				if err != nil {
					fail(err)
					return
				}
				out[i] = s
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-stop:
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
