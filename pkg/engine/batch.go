package engine

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// BatchResult is one GenerateBatch outcome, keyed by the submitting item's
// Index so results can be reassembled in submission order regardless of
// completion order.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// GenerateBatch fans requests out across at most concurrency simultaneous
// GenerateText calls, per spec's "caller-level fan-out with a configurable
// concurrency cap" (generation has no native batch endpoint; this is pure
// client-side scheduling). A rate.Limiter paces admission into the pool so
// a burst of submissions doesn't all dial out in the same instant, rather
// than relying on the semaphore alone. Results are returned in the same
// order as reqs regardless of completion order. ctx cancellation stops
// admitting new work; in-flight calls share ctx and so see the same
// cancellation, and GenerateBatch waits for them to return.
func (e *Engine) GenerateBatch(ctx context.Context, reqs []types.CanonicalRequest, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	limiter := rate.NewLimiter(rate.Limit(concurrency), concurrency)
	sem := make(chan struct{}, concurrency)
	results := make([]BatchResult, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		if err := limiter.Wait(ctx); err != nil {
			results[i] = BatchResult{Index: i, Err: err}
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, req types.CanonicalRequest) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := e.GenerateText(ctx, req, Hooks{})
			results[i] = BatchResult{Index: i, Result: result, Err: err}
		}(i, req)
	}
	wg.Wait()

	return results
}
