// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package precision standardizes the backward pass and gradient clipping
// of a training step across numeric precisions.
//
// # Basic Usage
//
//	cfg, err := config.Load("train.yaml")
//	plugin, err := precision.New(cfg)
//
//	detached, err := plugin.Backward(loss, opt, 0, false, precision.Manual{})
//	err = plugin.ClipGradients(opt, cfg.GradientClipVal, float64(cfg.NormType))
//	err = opt.Step()
//
// # Backward Modes
//
// Automatic hands the loss to a model hook; Manual runs autodiff directly
// with optional autodiff.BackwardOption values:
//
//	plugin.Backward(loss, opt, idx, false, precision.Automatic{Hook: model})
//	plugin.Backward(loss, opt, idx, false, precision.Manual{Options: []autodiff.BackwardOption{
//	    autodiff.WithGradient(seed),
//	}})
//
// # Clipping
//
// Clipping is a no-op for a nil or non-positive threshold and never scales
// gradients up. Failures wrap ErrEmptyGradientSet, ErrInvalidNormType,
// ErrInvalidClipValue or ErrDeviceMismatch.
package precision

import (
	"iter"

	"github.com/born-ml/precision/internal/config"
	"github.com/born-ml/precision/internal/precision"
	"github.com/born-ml/precision/nn"
	"github.com/born-ml/precision/optim"
	"github.com/born-ml/precision/tensor"
)

// Plugin handles backward and gradient clipping for one precision.
type Plugin = precision.Plugin

// Option configures a Plugin.
type Option = precision.Option

// Config holds the plugin settings.
type Config = config.Config

// GradientClipper rescales gradients so their combined norm stays bounded.
type GradientClipper = precision.GradientClipper

// BackwardMode selects how the backward pass runs.
type BackwardMode = precision.BackwardMode

// Automatic delegates the backward pass to a model hook.
type Automatic = precision.Automatic

// Manual runs the backward pass directly on the loss.
type Manual = precision.Manual

// BackwardHook is implemented by models that run their own backward pass.
type BackwardHook = precision.BackwardHook

// BackwardHookFunc adapts a function to BackwardHook.
type BackwardHookFunc = precision.BackwardHookFunc

// ClipError describes why a clipping call failed.
type ClipError = precision.ClipError

// Epsilon is the default stability constant of the clip coefficient.
const Epsilon = precision.Epsilon

// Errors.
var (
	ErrInvalidNormType  = precision.ErrInvalidNormType
	ErrInvalidClipValue = precision.ErrInvalidClipValue
	ErrEmptyGradientSet = precision.ErrEmptyGradientSet
	ErrDeviceMismatch   = precision.ErrDeviceMismatch
	ErrNoBackwardHook   = precision.ErrNoBackwardHook
)

// New creates a Plugin from cfg.
func New(cfg Config, opts ...Option) (*Plugin, error) {
	return precision.New(cfg, opts...)
}

// WithBackend sets the compute backend used for clipping.
func WithBackend(b tensor.Backend) Option {
	return precision.WithBackend(b)
}

// DefaultConfig returns a full-precision configuration with clipping disabled.
func DefaultConfig() Config {
	return config.Default()
}

// NewGradientClipper creates a standalone clipper using the global logger.
func NewGradientClipper(backend tensor.Backend) *GradientClipper {
	return precision.NewGradientClipper(backend, nil, nil)
}

// MasterParams yields opt's parameters in group-then-position order.
func MasterParams(opt optim.Optimizer) iter.Seq[*nn.Parameter] {
	return precision.MasterParams(opt)
}
