package autodiff

import "errors"

// Common errors.
var (
	ErrDetached      = errors.New("variable is detached from the computation graph")
	ErrGraphReleased = errors.New("computation graph was already released by a previous backward pass")
	ErrNonScalarLoss = errors.New("gradient seed required for non-scalar loss")
	ErrSeedShape     = errors.New("gradient seed shape does not match loss shape")
)
