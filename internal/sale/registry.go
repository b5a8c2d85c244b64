package sale

import "sync"

// Registry keeps failed-but-resumable runs addressable across invocations,
// keyed by the caller's checkout reference (the HTTP layer uses its
// idempotency key). A retry that arrives with the same unmodified input gets
// the original run back, preserving the created-order memo; a changed input
// starts a fresh run. Succeeded runs are discarded as soon as their outcome
// has been consumed.
type Registry struct {
	mu   sync.Mutex
	runs map[string]*Run
}

// NewRegistry builds an empty run registry.
func NewRegistry() *Registry {
	return &Registry{runs: map[string]*Run{}}
}

// RunFor returns the retained run for the reference when its input
// fingerprint matches, or a fresh run otherwise.
func (g *Registry) RunFor(engine *Engine, reference string, input Input) *Run {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.runs[reference]; ok {
		if existing.Input.Fingerprint() == input.Fingerprint() {
			return existing
		}
		delete(g.runs, reference)
	}

	run := engine.NewRun(input)
	g.runs[reference] = run
	return run
}

// Settle records the terminal outcome: succeeded runs are dropped, and so
// are failures a retry cannot fix. Resumable failures stay retained for a
// manual retry.
func (g *Registry) Settle(reference string, run *Run) {
	// Snapshot under the run's lock: another request holding the same
	// reference may be re-executing it right now.
	run.mu.Lock()
	status := run.Status
	runErr := run.err
	run.mu.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if status == StatusSucceeded {
		delete(g.runs, reference)
		return
	}
	if runErr != nil && !runErr.Kind.Resumable() {
		delete(g.runs, reference)
	}
}

// Len reports how many unsettled runs are retained.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.runs)
}
