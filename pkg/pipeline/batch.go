package pipeline

import (
	"context"
	"sync"

	"github.com/orneryd/corefsieve/pkg/coref"
)

// Outcome pairs a document's result with its error; exactly one is set.
type Outcome struct {
	Result *Result
	Err    error
}

// ResolveAll resolves docs with up to workers goroutines, one document per
// goroutine at a time. Outcomes are in input order. A failed document does
// not stop the others; cancellation makes the remaining documents fail
// with ErrCanceled.
func (p *Pipeline) ResolveAll(ctx context.Context, docs []*coref.Document, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}
	if workers > len(docs) {
		workers = len(docs)
	}
	out := make([]Outcome, len(docs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := p.Resolve(ctx, docs[i])
				out[i] = Outcome{Result: res, Err: err}
			}
		}()
	}
	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
