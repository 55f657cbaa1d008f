package tensor

import (
	"fmt"
)

// RawTensor is the untyped tensor representation shared by the backend,
// the autodiff tape, and parameters.
//
// Data is contiguous and row-major. Exactly one of f32/f64 is populated,
// chosen by dtype.
type RawTensor struct {
	shape  Shape
	dtype  DataType
	device Device
	f32    []float32
	f64    []float64
}

// NewRaw creates a zero-filled RawTensor with the given shape, type and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	r := &RawTensor{
		shape:  shape.Clone(),
		dtype:  dtype,
		device: device,
	}
	n := shape.NumElements()
	switch dtype {
	case Float32:
		r.f32 = make([]float32, n)
	case Float64:
		r.f64 = make([]float64, n)
	default:
		return nil, fmt.Errorf("unsupported dtype %s", dtype)
	}
	return r, nil
}

// FromFloat32 creates a float32 tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	copy(r.f32, data)
	return r, nil
}

// FromFloat64 creates a float64 tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromFloat64(data []float64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, Float64, device)
	if err != nil {
		return nil, err
	}
	copy(r.f64, data)
	return r, nil
}

// Scalar creates a 0-D tensor holding v.
func Scalar(v float64, dtype DataType, device Device) *RawTensor {
	r, err := NewRaw(Shape{}, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("scalar: %v", err))
	}
	r.SetAt(0, v)
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// AsFloat32 returns the float32 backing slice.
// Panics if the tensor's dtype is not Float32.
//
// WARNING: Modifications to the returned slice modify the tensor.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	return r.f32
}

// AsFloat64 returns the float64 backing slice.
// Panics if the tensor's dtype is not Float64.
//
// WARNING: Modifications to the returned slice modify the tensor.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	return r.f64
}

// Float64s returns a float64 copy of the data regardless of dtype.
func (r *RawTensor) Float64s() []float64 {
	if r.dtype == Float64 {
		return append([]float64(nil), r.f64...)
	}
	out := make([]float64, len(r.f32))
	for i, v := range r.f32 {
		out[i] = float64(v)
	}
	return out
}

// At returns the element at flat index i, widened to float64.
func (r *RawTensor) At(i int) float64 {
	if r.dtype == Float32 {
		return float64(r.f32[i])
	}
	return r.f64[i]
}

// SetAt stores v at flat index i, narrowing to the tensor's dtype.
func (r *RawTensor) SetAt(i int, v float64) {
	if r.dtype == Float32 {
		r.f32[i] = float32(v)
		return
	}
	r.f64[i] = v
}

// Item returns the value of a single-element tensor.
// Panics if the tensor holds more than one element.
func (r *RawTensor) Item() float64 {
	if r.NumElements() != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", r.shape))
	}
	return r.At(0)
}

// Clone returns a deep copy of the tensor on the same device.
func (r *RawTensor) Clone() *RawTensor {
	return &RawTensor{
		shape:  r.shape.Clone(),
		dtype:  r.dtype,
		device: r.device,
		f32:    append([]float32(nil), r.f32...),
		f64:    append([]float64(nil), r.f64...),
	}
}

// To returns the tensor placed on device.
//
// When the tensor already lives on device it is returned as is (no copy).
// Otherwise a copy tagged with the new device is returned, or an error
// wrapping ErrDeviceMismatch if there is no transfer path.
func (r *RawTensor) To(device Device) (*RawTensor, error) {
	if r.device == device {
		return r, nil
	}
	if !r.device.CanTransfer(device) {
		return nil, fmt.Errorf("transfer %s -> %s: %w", r.device, device, ErrDeviceMismatch)
	}
	out := r.Clone()
	out.device = device
	return out, nil
}

// String implements fmt.Stringer.
func (r *RawTensor) String() string {
	if r.dtype == Float32 {
		return fmt.Sprintf("tensor(%v, shape=%v, dtype=%s, device=%s)", r.f32, r.shape, r.dtype, r.device)
	}
	return fmt.Sprintf("tensor(%v, shape=%v, dtype=%s, device=%s)", r.f64, r.shape, r.dtype, r.device)
}

// CopyFrom overwrites r's data with src's, converting dtype if needed.
// Shapes must match.
func (r *RawTensor) CopyFrom(src *RawTensor) error {
	if !r.shape.Equal(src.shape) {
		return fmt.Errorf("copy: shape mismatch: %v vs %v", r.shape, src.shape)
	}
	if r.dtype == src.dtype {
		copy(r.f32, src.f32)
		copy(r.f64, src.f64)
		return nil
	}
	for i := range r.NumElements() {
		r.SetAt(i, src.At(i))
	}
	return nil
}

// AsType returns the tensor converted to dtype. When r already has dtype it
// is returned as is.
func (r *RawTensor) AsType(dtype DataType) (*RawTensor, error) {
	if r.dtype == dtype {
		return r, nil
	}
	out, err := NewRaw(r.shape, dtype, r.device)
	if err != nil {
		return nil, err
	}
	if err := out.CopyFrom(r); err != nil {
		return nil, err
	}
	return out, nil
}
