package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Results are placed on the device of the first operand. In-place methods
// mutate their first argument.
type Backend interface {
	// Element-wise binary operations. Either operand may hold a single
	// element, which is broadcast over the other.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar returns x * scalar as a new tensor.
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Fill creates a tensor with every element set to value.
	Fill(shape Shape, value float64, dtype DataType, device Device) *RawTensor

	// Reductions to a 0-D tensor.
	Sum(x *RawTensor) *RawTensor
	Norm(x *RawTensor, p float64) *RawTensor // p-norm of the flattened tensor, p may be +Inf
	AbsMax(x *RawTensor) *RawTensor

	// ScaleInPlace multiplies x by a single-element tensor on x's device.
	ScaleInPlace(x, scalar *RawTensor)

	// ClampInPlace limits every element of x to [-limit, limit].
	ClampInPlace(x *RawTensor, limit float64)

	// Metadata
	Name() string
}
