// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// Example:
//
//	tape := autodiff.NewGradientTape(cpu.New())
//	w := tape.Leaf(weight)
//	loss := w.Mul(tape.Constant(x)).Sum()
//	if err := autodiff.Backward(loss); err != nil {
//	    log.Fatal(err)
//	}
//	history = append(history, loss.Detach())
package autodiff

import (
	"github.com/born-ml/precision/internal/autodiff"
	"github.com/born-ml/precision/tensor"
)

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// Variable is a tensor value together with the tape that recorded it.
type Variable = autodiff.Variable

// BackwardOption configures Backward.
type BackwardOption = autodiff.BackwardOption

// Errors returned by Backward.
var (
	ErrDetached      = autodiff.ErrDetached
	ErrGraphReleased = autodiff.ErrGraphReleased
	ErrNonScalarLoss = autodiff.ErrNonScalarLoss
	ErrSeedShape     = autodiff.ErrSeedShape
)

// NewGradientTape creates a new gradient tape computing on backend.
func NewGradientTape(backend tensor.Backend) *GradientTape {
	return autodiff.NewGradientTape(backend)
}

// Backward accumulates gradients of loss into its tape's leaf parameters.
func Backward(loss *Variable, opts ...BackwardOption) error {
	return autodiff.Backward(loss, opts...)
}

// WithGradient seeds Backward with grad (required for non-scalar losses).
func WithGradient(grad *tensor.RawTensor) BackwardOption {
	return autodiff.WithGradient(grad)
}

// RetainGraph keeps the tape after Backward.
func RetainGraph() BackwardOption {
	return autodiff.RetainGraph()
}

// Ancestors returns the number of recorded operations v depends on.
func Ancestors(v *Variable) int {
	return autodiff.Ancestors(v)
}
