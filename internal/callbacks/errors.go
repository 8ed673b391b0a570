package callbacks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingOptimizers is returned when the run state declares an
	// optimizer collection that is absent.
	ErrMissingOptimizers = errors.New("no optimizers defined")

	// ErrNoParametersFrozen is returned when a freeze pass changed no
	// trainable flags, e.g. every targeted parameter was already frozen
	// or the target set was empty.
	ErrNoParametersFrozen = errors.New("no layers were frozen")
)

// UnknownTargetError reports a freeze target that does not exist in the
// model. Available holds the sorted names present in the model.
type UnknownTargetError struct {
	Name      string
	Available []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("attempted to freeze layer not found in model: %s (available layers: %s)",
		e.Name, strings.Join(e.Available, ", "))
}
