// Package nn holds the trainable parameters that optimizers update and the
// gradient clipper rescales.
package nn

import (
	"fmt"

	"github.com/born-ml/precision/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that require gradient computation during training.
// The gradient has the same shape as the data and is absent until the
// first backward pass reaches the parameter.
//
// Example:
//
//	// Create a weight parameter
//	weight := nn.NewParameter("weight", weightTensor)
//
//	// Get gradient after backward pass
//	if grad := weight.Grad(); grad != nil {
//	    ...
//	}
type Parameter struct {
	name string            // Parameter name (e.g., "linear1.weight")
	data *tensor.RawTensor // The parameter tensor
	grad *tensor.RawTensor // Gradient tensor (nil until backward)
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
// Gradient will be allocated during the first backward pass.
func NewParameter(name string, data *tensor.RawTensor) *Parameter {
	return &Parameter{
		name: name,
		data: data,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.data
}

// Device returns the device the parameter data lives on.
func (p *Parameter) Device() tensor.Device {
	return p.data.Device()
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter) Grad() *tensor.RawTensor {
	return p.grad
}

// HasGrad reports whether a gradient is present.
func (p *Parameter) HasGrad() bool {
	return p.grad != nil
}

// SetGrad sets the gradient tensor.
//
// The gradient must match the parameter's shape.
func (p *Parameter) SetGrad(grad *tensor.RawTensor) error {
	if grad != nil && !grad.Shape().Equal(p.data.Shape()) {
		return fmt.Errorf("parameter %q: gradient shape %v does not match %v", p.name, grad.Shape(), p.data.Shape())
	}
	p.grad = grad
	return nil
}

// AccumulateGrad adds grad into the existing gradient, or installs a copy
// of it when none is present yet. The parameter never shares grad's
// storage with the caller.
func (p *Parameter) AccumulateGrad(grad *tensor.RawTensor, backend tensor.Backend) error {
	if p.grad == nil {
		return p.SetGrad(grad.Clone())
	}
	return p.SetGrad(backend.Add(p.grad, grad))
}

// Cast converts the parameter data (and gradient, if any) to dtype.
//
// The data tensor is replaced, so Variables taken from the parameter
// before the cast no longer refer to it.
func (p *Parameter) Cast(dtype tensor.DataType) error {
	data, err := p.data.AsType(dtype)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", p.name, err)
	}
	p.data = data
	if p.grad != nil {
		grad, err := p.grad.AsType(dtype)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.name, err)
		}
		p.grad = grad
	}
	return nil
}

// ZeroGrad clears the gradient tensor.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
