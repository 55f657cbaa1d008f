package cpu

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/precision/internal/tensor"
)

// Sum returns the sum of all elements as a scalar tensor.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return tensor.Scalar(floats.Sum(x.Float64s()), x.DType(), x.Device())
}

// Norm returns the p-norm of all elements of x as a scalar tensor.
//
// p = +Inf gives the maximum absolute value. Accumulation happens in float64
// regardless of x's dtype; the result is narrowed back to x's dtype.
func (cpu *CPUBackend) Norm(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	return tensor.Scalar(floats.Norm(x.Float64s(), p), x.DType(), x.Device())
}

// AbsMax returns max |x| over all elements as a scalar tensor.
func (cpu *CPUBackend) AbsMax(x *tensor.RawTensor) *tensor.RawTensor {
	return tensor.Scalar(floats.Norm(x.Float64s(), math.Inf(1)), x.DType(), x.Device())
}
