// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: parameter groups, Step, ZeroGrad
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Gradients are read from each Parameter's Grad, so they can be clipped
// between the backward pass and Step.
//
// Example usage:
//
//	optimizer := optim.NewSGD(params, optim.SGDConfig{LR: 0.01}, cpu.New())
//
//	for step := range steps {
//	    tape := autodiff.NewGradientTape(backend)
//	    loss := computeLoss(tape, batch)
//	    _ = autodiff.Backward(loss)
//	    _ = clipper.Clip(precision.MasterParams(optimizer), &clipVal, 2)
//	    _ = optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// ParamGroups returns the optimizer's parameter groups in order.
	// The returned groups are borrowed; callers must not modify them.
	ParamGroups() []*ParamGroup

	// Step applies gradient updates to all parameters that have a gradient.
	Step() error

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the learning rate of the first parameter group.
	GetLR() float64
}

// ParamGroup is an ordered set of parameters sharing hyperparameters.
type ParamGroup struct {
	Params []*nn.Parameter
	LR     float64 // Learning rate for this group (0 = optimizer default)
}

// groups holds the parameter groups shared by all optimizers.
type groups struct {
	list      []*ParamGroup
	defaultLR float64
}

func newGroups(params []*nn.Parameter, lr float64) groups {
	return groups{
		list:      []*ParamGroup{{Params: params, LR: lr}},
		defaultLR: lr,
	}
}

// ParamGroups returns the parameter groups in insertion order.
func (g *groups) ParamGroups() []*ParamGroup {
	return g.list
}

// AddParamGroup appends a parameter group.
//
// A zero LR inherits the optimizer default. A parameter may belong to only
// one group.
func (g *groups) AddParamGroup(group ParamGroup) error {
	seen := make(map[*nn.Parameter]bool)
	for _, existing := range g.list {
		for _, p := range existing.Params {
			seen[p] = true
		}
	}
	for _, p := range group.Params {
		if seen[p] {
			return fmt.Errorf("parameter %q appears in more than one group", p.Name())
		}
	}
	if group.LR == 0 {
		group.LR = g.defaultLR
	}
	g.list = append(g.list, &group)
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (g *groups) ZeroGrad() {
	for _, group := range g.list {
		for _, p := range group.Params {
			p.ZeroGrad()
		}
	}
}

// GetLR returns the learning rate of the first group.
func (g *groups) GetLR() float64 {
	if len(g.list) == 0 {
		return g.defaultLR
	}
	return g.list[0].LR
}

// SetLR updates the learning rate of every group.
//
// Useful for learning rate scheduling during training.
func (g *groups) SetLR(lr float64) {
	g.defaultLR = lr
	for _, group := range g.list {
		group.LR = lr
	}
}

// gradOf returns the parameter's gradient placed on the parameter's device.
//
// Returns nil if no gradient is present (parameter wasn't part of the graph).
func gradOf(p *nn.Parameter) (*tensor.RawTensor, error) {
	grad := p.Grad()
	if grad == nil {
		return nil, nil
	}
	grad, err := grad.To(p.Device())
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", p.Name(), err)
	}
	return grad, nil
}
