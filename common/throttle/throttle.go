package throttle

import "sync"

// DefaultLimit caps bulk fan-out against upstream hosts and the datastore.
// Unbounded fan-out during a full pregenerate/purge cycle risks throttling.
const DefaultLimit = 25

// Run executes every function with at most limit of them in flight at once,
// and blocks until all have returned. A limit <= 0 uses DefaultLimit.
func Run(limit int, fns []func()) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for _, fn := range fns {
		wg.Add(1)
		sem <- struct{}{}
		go func(fn func()) {
			defer func() {
				<-sem
				wg.Done()
			}()
			fn()
		}(fn)
	}

	wg.Wait()
}
