// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface with ordered parameter groups
//
// # Training Loop Pattern
//
//	for step := range numSteps {
//	    // 1. Backward pass
//	    detached, err := plugin.Backward(loss, optimizer, 0, false, precision.Manual{})
//
//	    // 2. Clip gradients
//	    err = plugin.ClipGradients(optimizer, &maxNorm, 2)
//
//	    // 3. Update and reset
//	    err = optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/born-ml/precision/internal/optim"
	"github.com/born-ml/precision/nn"
	"github.com/born-ml/precision/tensor"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// ParamGroup is an ordered set of parameters sharing hyperparameters.
type ParamGroup = optim.ParamGroup

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(params, optim.SGDConfig{LR: 0.01, Momentum: 0.9}, cpu.New())
func NewSGD(params []*nn.Parameter, config SGDConfig, backend tensor.Backend) *SGD {
	return optim.NewSGD(params, config, backend)
}

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}
