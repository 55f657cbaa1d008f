package precision

import (
	"fmt"
	"iter"
	"math"

	"github.com/born-ml/precision/internal/logger"
	"github.com/born-ml/precision/internal/metrics"
	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/tensor"
)

// Epsilon is added to the total norm before dividing so an all-zero
// gradient set yields a finite clip coefficient.
const Epsilon = 1e-6

// GradientClipper rescales gradients in place so that their combined norm
// does not exceed a threshold.
//
// A clipper keeps no state between calls beyond its epsilon and its
// collaborators; it is meant to be called once per optimization step,
// after backward and before the optimizer step.
type GradientClipper struct {
	epsilon float64
	backend tensor.Backend
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewGradientClipper creates a clipper computing on backend.
// A nil log falls back to the global logger; a nil m disables metrics.
func NewGradientClipper(backend tensor.Backend, log *logger.Logger, m *metrics.Metrics) *GradientClipper {
	if log == nil {
		log = logger.Log
	}
	return &GradientClipper{
		epsilon: Epsilon,
		backend: backend,
		log:     log,
		metrics: m,
	}
}

// WithEpsilon returns a copy of the clipper using eps instead of Epsilon.
func (c *GradientClipper) WithEpsilon(eps float64) *GradientClipper {
	clone := *c
	clone.epsilon = eps
	return &clone
}

// Epsilon returns the stability constant used by this clipper.
func (c *GradientClipper) Epsilon() float64 {
	return c.epsilon
}

// Clip rescales the gradients of params so that their combined normType-norm
// is at most clipValue.
//
// A nil or non-positive clipValue is a no-op. Parameters without a gradient
// are ignored. normType selects the p-norm; math.Inf(1) uses the largest
// absolute gradient element. Gradients are never scaled up.
//
// Example:
//
//	maxNorm := 1.0
//	if err := clipper.Clip(precision.MasterParams(opt), &maxNorm, 2); err != nil {
//	    return err
//	}
func (c *GradientClipper) Clip(params iter.Seq[*nn.Parameter], clipValue *float64, normType float64) error {
	const op = "clip_norm"

	maxNorm, ok, err := checkClipValue(op, clipValue)
	if !ok || err != nil {
		return c.failed(err)
	}
	if math.IsNaN(normType) || normType <= 0 {
		return c.failed(&ClipError{Op: op, Kind: InvalidArgument, Err: ErrInvalidNormType,
			Detail: fmt.Sprintf("got %v", normType)})
	}

	grads, err := gradients(op, params)
	if err != nil {
		return c.failed(err)
	}

	device := grads[0].Device()
	totalNorm, err := c.totalNorm(grads, device, normType)
	if err != nil {
		return c.failed(&ClipError{Op: op, Kind: DeviceMismatch, Err: ErrDeviceMismatch, Detail: err.Error()})
	}

	coef := min(maxNorm/(totalNorm+c.epsilon), 1)
	for _, g := range grads {
		c.backend.ScaleInPlace(g, tensor.Scalar(coef, g.DType(), g.Device()))
	}

	if math.IsNaN(totalNorm) || math.IsInf(totalNorm, 0) {
		c.log.Warn("non-finite gradient norm", "total_norm", totalNorm, "norm_type", normType)
	}
	c.log.Debug("gradients clipped",
		"total_norm", totalNorm, "clip_coef", coef, "max_norm", maxNorm,
		"norm_type", normType, "params", len(grads), "device", device.String())
	c.metrics.RecordClip(totalNorm, coef)
	return nil
}

// ClipValues clamps every gradient element to [-clipValue, clipValue].
//
// The no-op and empty-set rules match Clip.
func (c *GradientClipper) ClipValues(params iter.Seq[*nn.Parameter], clipValue *float64) error {
	const op = "clip_value"

	limit, ok, err := checkClipValue(op, clipValue)
	if !ok || err != nil {
		return c.failed(err)
	}

	grads, err := gradients(op, params)
	if err != nil {
		return c.failed(err)
	}
	for _, g := range grads {
		c.backend.ClampInPlace(g, limit)
	}
	c.log.Debug("gradients clamped", "clip_value", limit, "params", len(grads))
	return nil
}

// totalNorm computes the combined norm of grads in device's context.
//
// For finite p the per-tensor norms are gathered into one vector, in
// sequence order, and reduced again with the same p. Since
// ||g||_p = (Σ_i ||g_i||_p^p)^(1/p), this equals the norm of all gradient
// elements concatenated, up to rounding.
func (c *GradientClipper) totalNorm(grads []*tensor.RawTensor, device tensor.Device, p float64) (float64, error) {
	if math.IsInf(p, 1) {
		total := 0.0
		for _, g := range grads {
			local, err := g.To(device)
			if err != nil {
				return 0, err
			}
			total = max(total, c.backend.AbsMax(local).Item())
		}
		return total, nil
	}

	norms, err := tensor.NewRaw(tensor.Shape{len(grads)}, grads[0].DType(), device)
	if err != nil {
		return 0, err
	}
	for i, g := range grads {
		local, err := g.To(device)
		if err != nil {
			return 0, err
		}
		norms.SetAt(i, c.backend.Norm(local, p).Item())
	}
	return c.backend.Norm(norms, p).Item(), nil
}

// failed records err (if any) in metrics and returns it.
func (c *GradientClipper) failed(err error) error {
	if err != nil {
		c.metrics.RecordClipError(KindOf(err).String())
	}
	return err
}

// checkClipValue returns the threshold and whether clipping should run.
func checkClipValue(op string, clipValue *float64) (float64, bool, error) {
	if clipValue == nil {
		return 0, false, nil
	}
	v := *clipValue
	if math.IsNaN(v) {
		return 0, false, &ClipError{Op: op, Kind: InvalidArgument, Err: ErrInvalidClipValue}
	}
	if v <= 0 {
		return 0, false, nil
	}
	return v, true, nil
}

// gradients collects the gradients present in params, in order.
func gradients(op string, params iter.Seq[*nn.Parameter]) ([]*tensor.RawTensor, error) {
	var grads []*tensor.RawTensor
	for p := range params {
		if p != nil && p.HasGrad() {
			grads = append(grads, p.Grad())
		}
	}
	if len(grads) == 0 {
		return nil, &ClipError{Op: op, Kind: InvalidState, Err: ErrEmptyGradientSet}
	}
	return grads, nil
}
