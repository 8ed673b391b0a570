// Package callbacks implements run-start callbacks applied when a training
// run resumes from a checkpoint.
//
// A Callback is invoked exactly once, synchronously, at the run-start
// lifecycle point, and mutates the caller-owned run state in place:
//
//	registry := callbacks.NewRegistry(m)
//	registry.Register(callbacks.NewRateRescaler(0.5, 0.1))
//	registry.Register(callbacks.NewLayerFreezer("encoder.weight"))
//	if err := registry.RunStart(ctx, state); err != nil {
//	    // configuration error, abort the run before any optimization step
//	}
//
// All failures are configuration or precondition errors: they surface
// immediately, abort dispatch, and are never retried. Misconfiguration that
// would otherwise be a silent no-op (freezing nothing) is a hard failure.
package callbacks
