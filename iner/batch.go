package iner

import "github.com/indexkit/iner/util"

// BatchRequest is one independent resolution job within a ResolveBatch
// call: its own Context (so it may carry a different snapshot, option
// set, or system-access predicate than its siblings) and expression
// list.
type BatchRequest struct {
	Ctx         *Context
	Expressions []string
}

// BatchResult is the outcome of one BatchRequest. Err is non-nil
// exactly when the resolution failed; a failed request never aborts
// its siblings (spec.md §5: concurrent calls are independent, with no
// cross-call ordering).
type BatchResult struct {
	Names []string
	Err   error
}

// ResolveBatch runs ResolveConcreteIndexNames for every request with
// at most concurrency resolutions in flight (0 serializes, negative is
// unlimited), preserving requests' input order in the returned slice.
func (r *Resolver) ResolveBatch(requests []BatchRequest, concurrency int) []BatchResult {
	results, _ := util.ConcurrentMapFuncWithError(requests, concurrency, func(req BatchRequest) (BatchResult, error) {
		names, err := r.ResolveConcreteIndexNames(req.Ctx, req.Expressions)
		return BatchResult{Names: names, Err: err}, nil
	})
	return results
}
