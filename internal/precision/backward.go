package precision

import (
	"github.com/born-ml/precision/internal/autodiff"
	"github.com/born-ml/precision/internal/optim"
)

// BackwardHook is implemented by models that run their own backward pass
// under automatic optimization. optIdx identifies the optimizer when a
// model trains with several.
type BackwardHook interface {
	Backward(loss *autodiff.Variable, opt optim.Optimizer, optIdx int) error
}

// BackwardHookFunc adapts a function to BackwardHook.
type BackwardHookFunc func(loss *autodiff.Variable, opt optim.Optimizer, optIdx int) error

// Backward calls f.
func (f BackwardHookFunc) Backward(loss *autodiff.Variable, opt optim.Optimizer, optIdx int) error {
	return f(loss, opt, optIdx)
}

// BackwardMode selects how the backward pass runs. It is either Automatic
// or Manual.
type BackwardMode interface {
	modeName() string
}

// Automatic delegates the backward pass to the model's hook.
type Automatic struct {
	Hook BackwardHook
}

func (Automatic) modeName() string { return "automatic" }

// Manual runs autodiff.Backward on the loss directly, forwarding Options
// (for example autodiff.WithGradient for a non-scalar loss).
type Manual struct {
	Options []autodiff.BackwardOption
}

func (Manual) modeName() string { return "manual" }

// DefaultBackwardHook is the hook most models use: a plain backward pass
// on the loss.
var DefaultBackwardHook BackwardHook = BackwardHookFunc(
	func(loss *autodiff.Variable, _ optim.Optimizer, _ int) error {
		return autodiff.Backward(loss)
	})
