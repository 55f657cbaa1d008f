// Package ops defines the differentiable operations recorded on a gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend before recording
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - AddOp: element-wise addition (d(a+b)/da = 1, d(a+b)/db = 1)
//   - SubOp: element-wise subtraction
//   - MulOp: element-wise multiplication (d(a*b)/da = b, d(a*b)/db = a)
//   - MulScalarOp: multiplication by a constant
//   - SumOp, MeanOp: reductions to a scalar
package ops

import "github.com/born-ml/precision/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// reduceScalar sums grad down to a single element when the input it flows
// to was broadcast as a scalar.
func reduceScalar(grad, input *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	if input.NumElements() == 1 && grad.NumElements() != 1 {
		sum := backend.Sum(grad)
		out, err := tensor.NewRaw(input.Shape(), input.DType(), input.Device())
		if err != nil {
			return sum
		}
		out.SetAt(0, sum.Item())
		return out
	}
	return grad
}
