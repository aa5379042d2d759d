package grouper

import "sync"

// DefaultParallelEvaluate fans pairs out across a worker per pair (bounded
// by maxWorkers in flight at once) and collects the merges with a
// sync.WaitGroup fan-out/collect. Pass this to GroupSignaturesParallel unless the caller
// needs a different dispatch strategy (e.g. a shared external pool).
func DefaultParallelEvaluate(maxWorkers int) func(pairs []candidatePair, eval func(candidatePair) (pairMerge, bool)) []pairMerge {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return func(pairs []candidatePair, eval func(candidatePair) (pairMerge, bool)) []pairMerge {
		if len(pairs) == 0 {
			return nil
		}

		results := make([]*pairMerge, len(pairs))
		sem := make(chan struct{}, maxWorkers)
		var wg sync.WaitGroup

		for i, p := range pairs {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, p candidatePair) {
				defer wg.Done()
				defer func() { <-sem }()
				if m, ok := eval(p); ok {
					results[i] = &m
				}
			}(i, p)
		}
		wg.Wait()

		merges := make([]pairMerge, 0, len(pairs))
		for _, r := range results {
			if r != nil {
				merges = append(merges, *r)
			}
		}
		return merges
	}
}
