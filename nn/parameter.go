// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides trainable parameters.
package nn

import (
	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/tensor"
)

// Parameter represents a trainable parameter: a tensor plus an optional
// gradient of the same shape.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	if weight.HasGrad() {
//	    fmt.Println(weight.Grad())
//	}
type Parameter = nn.Parameter

// NewParameter creates a new trainable parameter.
func NewParameter(name string, data *tensor.RawTensor) *Parameter {
	return nn.NewParameter(name, data)
}
