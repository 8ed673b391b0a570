package callbacks

import (
	"context"
	"fmt"

	"github.com/llm-d-incubation/training-resumption/internal/logging"
	"github.com/llm-d-incubation/training-resumption/internal/metrics"
	"github.com/llm-d-incubation/training-resumption/internal/trainstate"
)

// Callback is a one-shot mutator of resumed run state, invoked at the
// run-start lifecycle point.
type Callback interface {
	// Name returns a stable identifier used in logs, metrics, and error
	// wrapping.
	Name() string

	// OnRunStart mutates state in place. Any error is fatal to the run.
	OnRunStart(ctx context.Context, state trainstate.State) error
}

// Registry dispatches the run-start event to registered callbacks in
// registration order. The first error aborts dispatch.
type Registry struct {
	callbacks []Callback
	metrics   *metrics.Metrics
}

// NewRegistry creates a registry. m may be nil to disable metrics.
func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{metrics: m}
}

// Register appends cb to the dispatch order.
func (r *Registry) Register(cb Callback) {
	r.callbacks = append(r.callbacks, cb)
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	return len(r.callbacks)
}

// RunStart invokes every registered callback against state, in order.
func (r *Registry) RunStart(ctx context.Context, state trainstate.State) error {
	logger := logging.FromContext(ctx)
	for _, cb := range r.callbacks {
		logger.V(logging.DEBUG).Info("Dispatching run-start callback", "callback", cb.Name())
		if err := cb.OnRunStart(ctx, state); err != nil {
			r.metrics.RecordCallback(cb.Name(), metrics.OutcomeError)
			return fmt.Errorf("run-start callback %q: %w", cb.Name(), err)
		}
		r.metrics.RecordCallback(cb.Name(), metrics.OutcomeSuccess)
	}
	return nil
}
