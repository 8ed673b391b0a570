/*
Copyright 2025 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package trainstate defines the capability surface a resumed training run
// must expose to the run-start callbacks.
//
// The interfaces are deliberately narrow: the callbacks only need to read and
// write a handful of hyperparameters and per-parameter trainable flags, so
// that is all the host framework has to provide. An in-memory implementation
// (memory.go) backs tests, the checkpoint layer, and the CLI.
package trainstate

// ParamGroup is a named bundle of optimizer hyperparameters applied to a
// subset of a model's trainable values.
type ParamGroup interface {
	// LearningRate returns the group's current learning rate.
	LearningRate() float64

	// SetLearningRate replaces the group's learning rate.
	SetLearningRate(lr float64)

	// WeightDecay returns the group's current weight decay.
	WeightDecay() float64

	// SetWeightDecay replaces the group's weight decay.
	SetWeightDecay(wd float64)

	// InitialLearningRate reports the recorded initial learning rate used
	// by some schedulers to recompute warmup/decay curves. The second
	// return is false when the group does not track one.
	InitialLearningRate() (float64, bool)

	// SetInitialLearningRate replaces the recorded initial learning rate.
	// A no-op when the group does not track one.
	SetInitialLearningRate(lr float64)
}

// Optimizer exposes the ordered parameter groups of one optimizer.
type Optimizer interface {
	ParamGroups() []ParamGroup
}

// Scheduler exposes a learning-rate scheduler's recorded base rates, the
// reference rates the scheduler applies its time-dependent curve to.
type Scheduler interface {
	// BaseRates returns the ordered base learning rates.
	BaseRates() []float64

	// SetBaseRates replaces the ordered base learning rates.
	SetBaseRates(rates []float64)
}

// Parameter carries the mutable trainable flag of one model parameter.
// When the flag is false, gradients are neither computed nor applied for the
// parameter during optimization.
type Parameter interface {
	Trainable() bool
	SetTrainable(trainable bool)
}

// NamedParameter pairs a model parameter with its fully qualified name.
type NamedParameter struct {
	Name  string
	Param Parameter
}

// Model exposes the ordered (name, parameter) pairs of the model being
// trained.
type Model interface {
	NamedParameters() []NamedParameter
}

// State is the live run state handed to callbacks at run start. Callbacks
// mutate it in place; they never construct or destroy it.
type State interface {
	// Optimizers returns the run's optimizers. A nil slice means the run
	// declares an optimizer collection that is absent, which callers
	// treat differently from an empty (but present) collection.
	Optimizers() []Optimizer

	// Schedulers returns the run's schedulers, possibly empty.
	Schedulers() []Scheduler

	// Model returns the model being trained.
	Model() Model
}

// ParameterNames collects the set of parameter names present in m.
func ParameterNames(m Model) map[string]struct{} {
	names := make(map[string]struct{})
	for _, np := range m.NamedParameters() {
		names[np.Name] = struct{}{}
	}
	return names
}
