// Package workpool runs the per-TU processors in concurrency-capped
// batches and merges their included-symbol lists into one deduplicated
// global set (spec.md §4.7). Grounded on
// original_source/SymbolGenerator/main.cpp's batching loop
// (spawn `count` threads, join, drain) and on the teacher's own
// sync.WaitGroup fan-out/join idiom in internal/client/daemon.go.
package workpool

import (
	"sync"

	"github.com/clawmancat/symgen/internal/tu"
)

// Task builds a fresh Processor invocation for one object path. Each
// worker owns one path and one processor for the batch; no state is shared
// across workers within a batch, matching spec.md §5's ownership rules.
type Task func(objPath string) (tu.Result, error)

// Run processes paths in batches of at most concurrency, joining each
// batch before starting the next, and returns the deduplicated union of
// every TU's included symbols (keyed by decorated name, exact byte
// equality per spec.md §4.7).
func Run(paths []string, concurrency int, task Task) (map[string]struct{}, []error) {
	if concurrency < 1 {
		concurrency = 1
	}

	global := make(map[string]struct{})
	var errs []error

	for start := 0; start < len(paths); start += concurrency {
		end := start + concurrency
		if end > len(paths) {
			end = len(paths)
		}
		batch := paths[start:end]

		results := make([]tu.Result, len(batch))
		batchErrs := make([]error, len(batch))

		var wg sync.WaitGroup
		wg.Add(len(batch))
		for i, p := range batch {
			go func(i int, p string) {
				defer wg.Done()
				res, err := task(p)
				results[i] = res
				batchErrs[i] = err
			}(i, p)
		}
		wg.Wait()

		for i := range batch {
			if batchErrs[i] != nil {
				errs = append(errs, batchErrs[i])
				continue
			}
			for _, name := range results[i].Included {
				global[name] = struct{}{}
			}
		}
	}

	return global, errs
}
