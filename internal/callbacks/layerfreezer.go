package callbacks

import (
	"context"
	"sort"

	"github.com/llm-d-incubation/training-resumption/internal/logging"
	"github.com/llm-d-incubation/training-resumption/internal/metrics"
	"github.com/llm-d-incubation/training-resumption/internal/trainstate"
)

// LayerFreezerName identifies the layer freezer in logs and metrics.
const LayerFreezerName = "layer-freezer"

// LayerFreezer disables gradient tracking for a fixed, named subset of a
// model's parameters. Every requested name must exist in the model, and the
// pass must freeze at least one parameter that was still trainable;
// otherwise OnRunStart fails.
type LayerFreezer struct {
	targets map[string]struct{}
	metrics *metrics.Metrics
}

// NewLayerFreezer creates a freezer for the given parameter names.
// Duplicates are collapsed; order is irrelevant.
func NewLayerFreezer(names ...string) *LayerFreezer {
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[name] = struct{}{}
	}
	return &LayerFreezer{targets: targets}
}

// WithMetrics attaches a metrics sink and returns the freezer for chaining.
func (f *LayerFreezer) WithMetrics(m *metrics.Metrics) *LayerFreezer {
	f.metrics = m
	return f
}

func (f *LayerFreezer) Name() string { return LayerFreezerName }

// Targets returns the sorted target names, for inspection.
func (f *LayerFreezer) Targets() []string {
	names := make([]string, 0, len(f.targets))
	for name := range f.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OnRunStart validates that every target exists in the model, then flips the
// trainable flag on each targeted parameter that is still trainable.
//
// Returns an UnknownTargetError when a target is missing from the model, and
// ErrNoParametersFrozen when the pass changed nothing. Validation runs fully
// before any mutation.
func (f *LayerFreezer) OnRunStart(ctx context.Context, state trainstate.State) error {
	logger := logging.FromContext(ctx).WithName(LayerFreezerName)
	model := state.Model()

	available := trainstate.ParameterNames(model)
	for target := range f.targets {
		if _, ok := available[target]; !ok {
			names := make([]string, 0, len(available))
			for name := range available {
				names = append(names, name)
			}
			sort.Strings(names)
			return &UnknownTargetError{Name: target, Available: names}
		}
	}

	frozen := 0
	for _, np := range model.NamedParameters() {
		if _, targeted := f.targets[np.Name]; !targeted {
			continue
		}
		if !np.Param.Trainable() {
			continue
		}
		np.Param.SetTrainable(false)
		logger.V(logging.DEBUG).Info("Froze layer", "layer", np.Name)
		frozen++
	}

	if frozen == 0 {
		return ErrNoParametersFrozen
	}
	f.metrics.RecordFrozen(frozen)
	logger.Info("Froze layers", "count", frozen)
	return nil
}
