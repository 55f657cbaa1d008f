package precision

import (
	"errors"
	"fmt"

	"github.com/born-ml/precision/internal/tensor"
)

// Common errors.
var (
	ErrInvalidNormType  = errors.New("norm type must be a positive number or +Inf")
	ErrInvalidClipValue = errors.New("clip value must not be NaN")
	ErrEmptyGradientSet = errors.New("no parameter has a gradient")
	ErrDeviceMismatch   = tensor.ErrDeviceMismatch
	ErrNoBackwardHook   = errors.New("automatic backward mode requires a hook")
	ErrUnknownMode      = errors.New("unknown backward mode")
)

// Kind classifies a clipping failure.
type Kind int

// Failure kinds.
const (
	InvalidArgument Kind = iota + 1
	InvalidState
	DeviceMismatch
)

// String returns the snake_case name of the kind, used as a metric label.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case InvalidState:
		return "invalid_state"
	case DeviceMismatch:
		return "device_mismatch"
	default:
		return "unknown"
	}
}

// ClipError describes why a clipping call failed.
type ClipError struct {
	Op     string // "clip_norm" or "clip_value"
	Kind   Kind
	Err    error  // One of the sentinel errors above
	Detail string // Additional details
}

// Error implements the error interface.
func (e *ClipError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v: %s", e.Op, e.Kind, e.Err, e.Detail)
}

// Unwrap returns the sentinel error so errors.Is works.
func (e *ClipError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 if err is not a *ClipError.
func KindOf(err error) Kind {
	var ce *ClipError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
