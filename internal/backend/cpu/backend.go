// Package cpu implements the CPU backend on top of gonum's float kernels.
package cpu

import (
	"fmt"

	"github.com/born-ml/precision/internal/parallel"
	"github.com/born-ml/precision/internal/tensor"
)

// CPUBackend implements tensor operations on host memory.
//
// Results are tagged with the device of their first input, so a single
// CPUBackend serves tensors placed on any device.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend that splits large element-wise kernels
// across all CPUs.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel config.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{parallel: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Fill creates a tensor of the given shape with every element set to value.
func (cpu *CPUBackend) Fill(shape tensor.Shape, value float64, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result := newResult("fill", shape, dtype, device)
	switch dtype {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = value
		}
	}
	return result
}

// binary applies fn element-wise. Shapes must be equal, or one operand must
// hold a single element which is broadcast over the other.
func (cpu *CPUBackend) binary(op string, a, b *tensor.RawTensor, fn func(x, y float64) float64) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", op, a.DType(), b.DType()))
	}

	shape := a.Shape()
	switch {
	case a.Shape().Equal(b.Shape()):
	case b.NumElements() == 1:
	case a.NumElements() == 1:
		shape = b.Shape()
	default:
		panic(fmt.Sprintf("%s: shapes not compatible: %v vs %v", op, a.Shape(), b.Shape()))
	}

	result := newResult(op, shape, a.DType(), a.Device())
	parallel.For(result.NumElements(), cpu.parallel, func(i int) {
		result.SetAt(i, fn(a.At(index(a, i)), b.At(index(b, i))))
	})
	return result
}

// index maps a flat output index onto t, broadcasting single-element tensors.
func index(t *tensor.RawTensor, i int) int {
	if t.NumElements() == 1 {
		return 0
	}
	return i
}

func newResult(op string, shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
