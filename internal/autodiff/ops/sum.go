package ops

import "github.com/born-ml/precision/internal/tensor"

// SumOp reduces all elements to a scalar: output = sum(x).
//
// Backward pass: every input element receives the (scalar) output gradient.
type SumOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{input: x, output: output}
}

// Backward broadcasts the output gradient over the input's shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	ones := backend.Fill(op.input.Shape(), 1, op.input.DType(), op.input.Device())
	return []*tensor.RawTensor{backend.Mul(ones, outputGrad)}
}

// Inputs returns [x].
func (op *SumOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns sum(x).
func (op *SumOp) Output() *tensor.RawTensor {
	return op.output
}

// MeanOp reduces all elements to their mean: output = sum(x) / n.
type MeanOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{input: x, output: output}
}

// Backward gives every input element outputGrad / n.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := float64(op.input.NumElements())
	fill := backend.Fill(op.input.Shape(), 1/n, op.input.DType(), op.input.Device())
	return []*tensor.RawTensor{backend.Mul(fill, outputGrad)}
}

// Inputs returns [x].
func (op *MeanOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns mean(x).
func (op *MeanOp) Output() *tensor.RawTensor {
	return op.output
}
