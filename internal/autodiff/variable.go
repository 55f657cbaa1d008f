package autodiff

import (
	"github.com/born-ml/precision/internal/autodiff/ops"
	"github.com/born-ml/precision/internal/tensor"
)

// Variable is a tensor value together with the tape that recorded it.
//
// Operations between Variables of the same tape are recorded. A detached
// Variable has no tape: it still computes, but nothing it produces can be
// differentiated.
type Variable struct {
	raw        *tensor.RawTensor
	backend    tensor.Backend
	tape       *GradientTape
	generation int
}

// Raw returns the underlying tensor.
func (v *Variable) Raw() *tensor.RawTensor {
	return v.raw
}

// Shape returns the tensor's shape.
func (v *Variable) Shape() tensor.Shape {
	return v.raw.Shape()
}

// Item returns the value of a single-element Variable.
func (v *Variable) Item() float64 {
	return v.raw.Item()
}

// IsDetached reports whether v is disconnected from any computation graph.
func (v *Variable) IsDetached() bool {
	return v.tape == nil
}

// Detach returns a Variable sharing v's data but holding no reference to
// the tape, so the graph that produced v can be released.
//
// Example:
//
//	loss := model.Loss(batch)
//	_ = autodiff.Backward(loss)
//	history = append(history, loss.Detach()) // does not keep the graph alive
func (v *Variable) Detach() *Variable {
	return &Variable{raw: v.raw, backend: v.backend}
}

// Ancestors returns the number of recorded operations v depends on.
// It is 0 for leaves, detached Variables, and released graphs.
func Ancestors(v *Variable) int {
	if v.live() != nil {
		return 0
	}
	return v.tape.ancestors(v.raw)
}

// live returns nil if v still belongs to an unreleased graph.
func (v *Variable) live() error {
	if v.tape == nil {
		return ErrDetached
	}
	if v.generation != v.tape.generation {
		return ErrGraphReleased
	}
	return nil
}

// Add returns v + other.
func (v *Variable) Add(other *Variable) *Variable {
	out := v.backend.Add(v.raw, other.raw)
	return v.record(out, other, ops.NewAddOp(v.raw, other.raw, out))
}

// Sub returns v - other.
func (v *Variable) Sub(other *Variable) *Variable {
	out := v.backend.Sub(v.raw, other.raw)
	return v.record(out, other, ops.NewSubOp(v.raw, other.raw, out))
}

// Mul returns v * other (element-wise).
func (v *Variable) Mul(other *Variable) *Variable {
	out := v.backend.Mul(v.raw, other.raw)
	return v.record(out, other, ops.NewMulOp(v.raw, other.raw, out))
}

// MulScalar returns v * c.
func (v *Variable) MulScalar(c float64) *Variable {
	out := v.backend.MulScalar(v.raw, c)
	return v.record(out, nil, ops.NewMulScalarOp(v.raw, c, out))
}

// Square returns v * v.
func (v *Variable) Square() *Variable {
	return v.Mul(v)
}

// Sum returns the sum of all elements.
func (v *Variable) Sum() *Variable {
	out := v.backend.Sum(v.raw)
	return v.record(out, nil, ops.NewSumOp(v.raw, out))
}

// Mean returns the mean of all elements.
func (v *Variable) Mean() *Variable {
	out := v.backend.MulScalar(v.backend.Sum(v.raw), 1/float64(v.raw.NumElements()))
	return v.record(out, nil, ops.NewMeanOp(v.raw, out))
}

// record wraps out in a Variable and records op when either operand is
// attached to a live tape.
func (v *Variable) record(out *tensor.RawTensor, other *Variable, op ops.Operation) *Variable {
	tape := v.tape
	if v.live() != nil {
		tape = nil
	}
	if tape == nil && other != nil && other.live() == nil {
		tape = other.tape
	}
	if tape == nil {
		return &Variable{raw: out, backend: v.backend}
	}
	tape.Record(op)
	return tape.variable(out)
}
