package autodiff

import (
	"fmt"

	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/tensor"
)

// backwardConfig collects the options of a single Backward call.
type backwardConfig struct {
	seed        *tensor.RawTensor
	retainGraph bool
}

// BackwardOption configures Backward.
type BackwardOption func(*backwardConfig)

// WithGradient seeds the backward pass with grad instead of ones.
// Required for non-scalar losses; grad must match the loss shape.
func WithGradient(grad *tensor.RawTensor) BackwardOption {
	return func(c *backwardConfig) {
		c.seed = grad
	}
}

// RetainGraph keeps the tape intact after the backward pass so it can be
// differentiated again.
func RetainGraph() BackwardOption {
	return func(c *backwardConfig) {
		c.retainGraph = true
	}
}

// Backward computes gradients of loss with respect to every leaf Parameter
// on its tape and accumulates them into Parameter.Grad.
//
// Unless RetainGraph is given, the tape is cleared afterwards, releasing
// every intermediate tensor of the graph.
//
// Example:
//
//	tape := autodiff.NewGradientTape(cpu.New())
//	x := tape.Leaf(param)
//	y := x.Square().Sum() // y = sum(x²)
//	if err := autodiff.Backward(y); err != nil {
//	    return err
//	}
//	grad := param.Grad() // dy/dx = 2x
func Backward(loss *Variable, opts ...BackwardOption) error {
	var cfg backwardConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := loss.live(); err != nil {
		return fmt.Errorf("backward: %w", err)
	}

	seed, err := outputGrad(loss, cfg.seed)
	if err != nil {
		return fmt.Errorf("backward: %w", err)
	}

	tape := loss.tape
	grads := tape.gradients(loss.raw, seed)

	// Every transfer and shape is checked before the first parameter is
	// touched, so a failed call leaves all gradients as they were.
	type update struct {
		param *nn.Parameter
		grad  *tensor.RawTensor
	}
	updates := make([]update, 0, len(tape.order))
	for _, raw := range tape.order {
		param := tape.leaves[raw]
		grad, ok := grads[raw]
		if !ok {
			continue
		}
		grad, err = grad.To(param.Device())
		if err != nil {
			return fmt.Errorf("backward: parameter %q: %w", param.Name(), err)
		}
		if !grad.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("backward: parameter %q: gradient shape %v does not match %v",
				param.Name(), grad.Shape(), param.Tensor().Shape())
		}
		updates = append(updates, update{param: param, grad: grad})
	}
	for _, u := range updates {
		if err := u.param.AccumulateGrad(u.grad, tape.backend); err != nil {
			return fmt.Errorf("backward: %w", err)
		}
	}

	if !cfg.retainGraph {
		tape.Clear()
	}
	return nil
}

// outputGrad returns the seed gradient: the caller's seed, or ones for a
// single-element loss.
func outputGrad(loss *Variable, seed *tensor.RawTensor) (*tensor.RawTensor, error) {
	if seed != nil {
		if !seed.Shape().Equal(loss.Shape()) {
			return nil, fmt.Errorf("%w: got %v, want %v", ErrSeedShape, seed.Shape(), loss.Shape())
		}
		return seed, nil
	}
	if !loss.Shape().IsScalar() {
		return nil, fmt.Errorf("%w: shape %v", ErrNonScalarLoss, loss.Shape())
	}
	return loss.backend.Fill(loss.Shape(), 1, loss.raw.DType(), loss.raw.Device()), nil
}
