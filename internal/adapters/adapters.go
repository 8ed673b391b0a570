// Package adapters provides a thin model-wrapping helper for
// parameter-efficient fine-tuning setups: it freezes the base model's
// parameters and attaches trainable adapter parameters next to the targeted
// ones. Adapter arithmetic itself is owned by the host framework; this
// package only manages names and trainable flags.
package adapters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/llm-d-incubation/training-resumption/internal/trainstate"
)

// ErrNoTargetsMatched is returned when no base parameter matched any target
// suffix.
var ErrNoTargetsMatched = errors.New("adapters: no parameters matched the target suffixes")

// DefaultAdapterNames are the adapter parameter names attached per matched
// base parameter when Config.AdapterNames is empty.
var DefaultAdapterNames = []string{"lora_a", "lora_b"}

// Config controls Wrap.
type Config struct {
	// TargetSuffixes selects base parameters by name suffix, e.g.
	// "q_proj.weight". At least one parameter must match.
	TargetSuffixes []string

	// AdapterNames are the per-target adapter parameter names. Empty
	// means DefaultAdapterNames.
	AdapterNames []string
}

// WrappedModel is a Model whose base parameters are frozen and whose
// targeted parameters carry trainable adapter parameters.
type WrappedModel struct {
	params []trainstate.NamedParameter
}

func (m *WrappedModel) NamedParameters() []trainstate.NamedParameter { return m.params }

// Wrap freezes every parameter of model and attaches adapter parameters
// after each parameter matching a target suffix. Adapter parameters are
// named <base>.<adapter>, e.g. "encoder.q_proj.weight.lora_a", and start
// trainable. The base model's Parameter values are shared, so freezing is
// visible through the original model as well.
//
// Validation runs fully before any mutation: when Wrap fails, no parameter
// of model has been touched.
func Wrap(model trainstate.Model, cfg Config) (*WrappedModel, error) {
	if len(cfg.TargetSuffixes) == 0 {
		return nil, fmt.Errorf("adapters: no target suffixes configured")
	}
	adapterNames := cfg.AdapterNames
	if len(adapterNames) == 0 {
		adapterNames = DefaultAdapterNames
	}

	params := model.NamedParameters()
	matched := 0
	for _, np := range params {
		if matchesTarget(np.Name, cfg.TargetSuffixes) {
			matched++
		}
	}
	if matched == 0 {
		return nil, ErrNoTargetsMatched
	}

	wrapped := &WrappedModel{
		params: make([]trainstate.NamedParameter, 0, len(params)+matched*len(adapterNames)),
	}
	for _, np := range params {
		np.Param.SetTrainable(false)
		wrapped.params = append(wrapped.params, np)

		if !matchesTarget(np.Name, cfg.TargetSuffixes) {
			continue
		}
		for _, adapter := range adapterNames {
			wrapped.params = append(wrapped.params, trainstate.NamedParameter{
				Name:  np.Name + "." + adapter,
				Param: trainstate.NewParam(true),
			})
		}
	}
	return wrapped, nil
}

func matchesTarget(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
