// Package precision standardizes how a training step computes gradients
// and post-processes them for a given numeric precision.
//
// A Plugin runs the backward pass (delegating to a model hook or running
// autodiff directly), hands the training loop a detached loss, and clips
// gradient norms before the optimizer step:
//
//	plugin, err := precision.New(cfg)
//	...
//	detached, err := plugin.Backward(loss, opt, 0, false, precision.Manual{})
//	err = plugin.ClipGradients(opt, cfg.GradientClipVal, float64(cfg.NormType))
//	err = opt.Step()
package precision

import (
	"fmt"
	"iter"
	"time"

	"github.com/born-ml/precision/internal/autodiff"
	"github.com/born-ml/precision/internal/backend/cpu"
	"github.com/born-ml/precision/internal/config"
	"github.com/born-ml/precision/internal/logger"
	"github.com/born-ml/precision/internal/metrics"
	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/optim"
	"github.com/born-ml/precision/internal/tensor"
)

// Model is the part of a model the plugin touches when connecting.
type Model interface {
	Parameters() []*nn.Parameter
}

// Scheduler is a learning-rate scheduler passed through Connect.
type Scheduler interface {
	Step()
}

// Plugin handles backward and gradient clipping for one precision.
type Plugin struct {
	cfg     config.Config
	dtype   tensor.DataType
	backend tensor.Backend
	clipper *GradientClipper
	log     *logger.Logger
	metrics *metrics.Metrics
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the plugin logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Plugin) { p.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Plugin) { p.metrics = m }
}

// WithBackend sets the compute backend used for clipping.
func WithBackend(b tensor.Backend) Option {
	return func(p *Plugin) { p.backend = b }
}

// New creates a Plugin from cfg.
func New(cfg config.Config, opts ...Option) (*Plugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("precision: %w", err)
	}
	dtype, err := tensor.DataTypeForBits(cfg.Precision)
	if err != nil {
		return nil, fmt.Errorf("precision: %w", err)
	}

	p := &Plugin{
		cfg:     cfg,
		dtype:   dtype,
		backend: cpu.New(),
		log:     logger.Log,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("component", "precision", "precision", cfg.Precision)
	p.clipper = NewGradientClipper(p.backend, p.log, p.metrics).WithEpsilon(cfg.Epsilon)
	return p, nil
}

// Precision returns the precision in bits (32 or 64).
func (p *Plugin) Precision() int {
	return p.cfg.Precision
}

// DataType returns the tensor type parameters are trained in.
func (p *Plugin) DataType() tensor.DataType {
	return p.dtype
}

// Clipper returns the plugin's gradient clipper.
func (p *Plugin) Clipper() *GradientClipper {
	return p.clipper
}

// MasterParams returns the parameters opt updates. See the package-level
// MasterParams.
func (p *Plugin) MasterParams(opt optim.Optimizer) iter.Seq[*nn.Parameter] {
	return MasterParams(opt)
}

// Connect attaches the plugin to a model and its optimizers and returns
// them. Model parameters are cast to the plugin's data type; optimizers
// and schedulers pass through unchanged.
func (p *Plugin) Connect(model Model, optimizers []optim.Optimizer, schedulers []Scheduler) (Model, []optim.Optimizer, []Scheduler, error) {
	cast := 0
	for _, param := range model.Parameters() {
		if param.Tensor().DType() == p.dtype {
			continue
		}
		if err := param.Cast(p.dtype); err != nil {
			return nil, nil, nil, fmt.Errorf("connect: %w", err)
		}
		cast++
	}
	p.log.Debug("connected", "optimizers", len(optimizers), "schedulers", len(schedulers), "cast_params", cast)
	return model, optimizers, schedulers, nil
}

// Backward runs the backward pass for one optimization step and returns
// the loss detached from its computation graph.
//
// In Automatic mode the hook receives loss, opt and optIdx. In Manual mode
// autodiff.Backward runs on loss with the mode's options. The returned
// Variable never keeps the graph alive, so the training loop can hold on
// to past losses.
//
// shouldAccumulate only annotates the log: gradients always accumulate
// into Parameter.Grad until the optimizer's ZeroGrad.
func (p *Plugin) Backward(loss *autodiff.Variable, opt optim.Optimizer, optIdx int, shouldAccumulate bool, mode BackwardMode) (*autodiff.Variable, error) {
	start := time.Now()

	switch m := mode.(type) {
	case Automatic:
		if m.Hook == nil {
			return nil, fmt.Errorf("backward: %w", ErrNoBackwardHook)
		}
		if err := m.Hook.Backward(loss, opt, optIdx); err != nil {
			return nil, fmt.Errorf("backward: optimizer %d: %w", optIdx, err)
		}
	case Manual:
		if err := autodiff.Backward(loss, m.Options...); err != nil {
			return nil, fmt.Errorf("backward: %w", err)
		}
	default:
		return nil, fmt.Errorf("backward: %w: %T", ErrUnknownMode, mode)
	}

	elapsed := time.Since(start)
	p.metrics.RecordBackward(mode.modeName(), elapsed.Seconds())
	p.log.Debug("backward", "mode", mode.modeName(), "optimizer", optIdx,
		"accumulate", shouldAccumulate, "elapsed", elapsed)

	return loss.Detach(), nil
}

// ClipGradients clips the norm of opt's gradients to clipValue.
// See GradientClipper.Clip.
func (p *Plugin) ClipGradients(opt optim.Optimizer, clipValue *float64, normType float64) error {
	return p.clipper.Clip(MasterParams(opt), clipValue, normType)
}

// ClipConfigured clips opt's gradients with the configured algorithm,
// threshold and norm type. It is a no-op when clipping is disabled.
func (p *Plugin) ClipConfigured(opt optim.Optimizer) error {
	if p.cfg.GradientClipAlgorithm == config.ClipByValue {
		return p.clipper.ClipValues(MasterParams(opt), p.cfg.GradientClipVal)
	}
	return p.ClipGradients(opt, p.cfg.GradientClipVal, float64(p.cfg.NormType))
}
