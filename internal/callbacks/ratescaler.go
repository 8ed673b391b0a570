package callbacks

import (
	"context"

	"github.com/llm-d-incubation/training-resumption/internal/logging"
	"github.com/llm-d-incubation/training-resumption/internal/trainstate"
)

// RateRescalerName identifies the rate rescaler in logs and metrics.
const RateRescalerName = "rate-rescaler"

// RateRescaler multiplies every optimizer learning rate by ScaleFactor and
// sets each group's weight decay to WeightDecayFraction of the rescaled
// rate. Scheduler base rates are rescaled in lockstep so warmup/decay curves
// stay consistent with the optimizer.
//
// The rescaler is meant to run exactly once, at the moment a checkpoint is
// resumed with an intentionally modified schedule. It is NOT idempotent:
// invoking it twice compounds the scale factor multiplicatively.
type RateRescaler struct {
	// ScaleFactor is the multiplicative factor applied to every learning
	// rate. Any finite value is accepted; no range validation is imposed.
	ScaleFactor float64

	// WeightDecayFraction is the fraction of the rescaled learning rate
	// assigned as weight decay.
	WeightDecayFraction float64
}

// NewRateRescaler creates a rescaler with the given scale factor and weight
// decay fraction.
func NewRateRescaler(scaleFactor, weightDecayFraction float64) *RateRescaler {
	return &RateRescaler{
		ScaleFactor:         scaleFactor,
		WeightDecayFraction: weightDecayFraction,
	}
}

func (r *RateRescaler) Name() string { return RateRescalerName }

// OnRunStart rescales all optimizer groups and scheduler base rates in
// place. Returns ErrMissingOptimizers, before any mutation, when the run's
// optimizer collection is absent.
func (r *RateRescaler) OnRunStart(ctx context.Context, state trainstate.State) error {
	logger := logging.FromContext(ctx).WithName(RateRescalerName)

	optimizers := state.Optimizers()
	if optimizers == nil {
		return ErrMissingOptimizers
	}

	for _, opt := range optimizers {
		for _, group := range opt.ParamGroups() {
			// Weight decay derives from the already-rescaled rate.
			lr := group.LearningRate() * r.ScaleFactor
			group.SetLearningRate(lr)
			group.SetWeightDecay(lr * r.WeightDecayFraction)
			if initial, ok := group.InitialLearningRate(); ok {
				group.SetInitialLearningRate(initial * r.ScaleFactor)
			}
			logger.Info("Set learning rate and weight decay",
				"learningRate", group.LearningRate(),
				"weightDecay", group.WeightDecay())
		}
	}

	for _, sched := range state.Schedulers() {
		rates := sched.BaseRates()
		scaled := make([]float64, len(rates))
		for i, base := range rates {
			scaled[i] = base * r.ScaleFactor
		}
		sched.SetBaseRates(scaled)
	}

	return nil
}
