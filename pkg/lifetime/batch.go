package lifetime

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/MasterTaffer/x86-64-encoder/pkg/ir"
)

// Pool analyzes functions in parallel. Analysis is pure per function,
// so the only shared state is the work index and a progress counter.
type Pool struct {
	NumWorkers int
	completed  atomic.Int64
}

// NewPool creates a pool with the given number of workers.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{NumWorkers: numWorkers}
}

// Completed returns how many functions have been analyzed so far.
func (p *Pool) Completed() int64 { return p.completed.Load() }

// Run analyzes all functions, preserving input order in the results.
func (p *Pool) Run(fns []ir.Function) []*FunctionAnalysis {
	results := make([]*FunctionAnalysis, len(fns))
	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < p.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(fns) {
					return
				}
				results[i] = Analyse(&fns[i])
				p.completed.Add(1)
			}
		}()
	}
	wg.Wait()
	return results
}

// AnalyseAll analyzes fns on a fresh pool. workers <= 0 means NumCPU.
func AnalyseAll(fns []ir.Function, workers int) []*FunctionAnalysis {
	return NewPool(workers).Run(fns)
}
