// Package checkpoint reads and writes JSON snapshots of resumable run
// state: optimizer parameter groups, scheduler base rates, and per-parameter
// trainable flags. A snapshot materializes into mutable
// trainstate run state, and captures the mutated values back before saving.
//
// The format is a harness for the run-start callbacks and the CLI; it does
// not replicate any host framework's own checkpointing.
package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/llm-d-incubation/training-resumption/internal/trainstate"
)

// FormatVersion is the snapshot format version this package writes.
const FormatVersion = 1

var (
	// ErrUnsupportedVersion is returned when a snapshot declares a format
	// version this package does not understand.
	ErrUnsupportedVersion = errors.New("checkpoint: unsupported format version")

	// ErrNoModel is returned when a snapshot carries no model section.
	ErrNoModel = errors.New("checkpoint: snapshot has no model")
)

// GroupSnapshot is one optimizer parameter group.
type GroupSnapshot struct {
	LearningRate        float64  `json:"learning_rate"`
	WeightDecay         float64  `json:"weight_decay"`
	InitialLearningRate *float64 `json:"initial_learning_rate,omitempty"`
}

// OptimizerSnapshot is one optimizer with its ordered parameter groups.
type OptimizerSnapshot struct {
	Name        string          `json:"name,omitempty"`
	ParamGroups []GroupSnapshot `json:"param_groups"`
}

// SchedulerSnapshot is one scheduler with its ordered base rates.
type SchedulerSnapshot struct {
	Name      string    `json:"name,omitempty"`
	BaseRates []float64 `json:"base_rates"`
}

// ParameterSnapshot is one named model parameter.
type ParameterSnapshot struct {
	Name      string `json:"name"`
	Trainable bool   `json:"trainable"`
}

// ModelSnapshot is the ordered parameter list of the model.
type ModelSnapshot struct {
	Parameters []ParameterSnapshot `json:"parameters"`
}

// Snapshot is a serialized resumable run state. A nil Optimizers slice
// round-trips as JSON null and models a run whose optimizer collection is
// absent, which the rate rescaler rejects.
type Snapshot struct {
	Version    int                 `json:"version"`
	RunID      string              `json:"run_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at,omitempty"`
	Optimizers []OptimizerSnapshot `json:"optimizers"`
	Schedulers []SchedulerSnapshot `json:"schedulers,omitempty"`
	Model      *ModelSnapshot      `json:"model"`
}

// Load reads and validates a snapshot file.
func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: reading %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("checkpoint: parsing %s: %w", path, err)
	}
	if snap.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	if snap.Model == nil {
		return nil, ErrNoModel
	}
	return &snap, nil
}

// Save writes the snapshot to path, assigning a run ID and creation time if
// the snapshot has none.
func (s *Snapshot) Save(path string) error {
	s.Version = FormatVersion
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: encoding: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("checkpoint: writing %s: %w", path, err)
	}
	return nil
}

// State materializes the snapshot into mutable in-memory run state. The
// returned state shares no storage with the snapshot; use Capture to copy
// mutated values back.
func (s *Snapshot) State() *trainstate.MemState {
	var optimizers []trainstate.Optimizer
	if s.Optimizers != nil {
		optimizers = make([]trainstate.Optimizer, 0, len(s.Optimizers))
		for _, opt := range s.Optimizers {
			groups := make([]*trainstate.Group, 0, len(opt.ParamGroups))
			for _, g := range opt.ParamGroups {
				group := trainstate.NewGroup(g.LearningRate, g.WeightDecay)
				if g.InitialLearningRate != nil {
					group = group.WithInitialRate(*g.InitialLearningRate)
				}
				groups = append(groups, group)
			}
			optimizers = append(optimizers, trainstate.NewOptimizer(groups...))
		}
	}

	schedulers := make([]trainstate.Scheduler, 0, len(s.Schedulers))
	for _, sched := range s.Schedulers {
		rates := make([]float64, len(sched.BaseRates))
		copy(rates, sched.BaseRates)
		schedulers = append(schedulers, trainstate.NewScheduler(rates...))
	}

	model := trainstate.NewModel()
	if s.Model != nil {
		for _, p := range s.Model.Parameters {
			model.Add(p.Name, trainstate.NewParam(p.Trainable))
		}
	}

	return trainstate.NewState(optimizers, schedulers, model)
}

// Capture copies current values from state back into the snapshot. The state
// must have the shape State produced; sections that differ in length are
// copied up to the shorter of the two.
func (s *Snapshot) Capture(state trainstate.State) {
	for i, opt := range state.Optimizers() {
		if i >= len(s.Optimizers) {
			break
		}
		for j, group := range opt.ParamGroups() {
			if j >= len(s.Optimizers[i].ParamGroups) {
				break
			}
			snap := &s.Optimizers[i].ParamGroups[j]
			snap.LearningRate = group.LearningRate()
			snap.WeightDecay = group.WeightDecay()
			if initial, ok := group.InitialLearningRate(); ok {
				snap.InitialLearningRate = &initial
			}
		}
	}

	for i, sched := range state.Schedulers() {
		if i >= len(s.Schedulers) {
			break
		}
		rates := sched.BaseRates()
		s.Schedulers[i].BaseRates = make([]float64, len(rates))
		copy(s.Schedulers[i].BaseRates, rates)
	}

	if s.Model == nil {
		return
	}
	params := state.Model().NamedParameters()
	for i := range s.Model.Parameters {
		if i >= len(params) {
			break
		}
		s.Model.Parameters[i].Trainable = params[i].Param.Trainable()
	}
}
