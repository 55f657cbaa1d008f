package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/precision/internal/parallel"
	"github.com/born-ml/precision/internal/tensor"
)

// MulScalar multiplies every element by scalar, returning a new tensor.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := x.Clone()
	scale(result, scalar)
	return result
}

// ScaleInPlace multiplies x by a single-element tensor in place.
//
// The scalar must already live on x's device.
func (cpu *CPUBackend) ScaleInPlace(x, scalar *tensor.RawTensor) {
	if scalar.NumElements() != 1 {
		panic(fmt.Sprintf("scale: expected single-element scalar, got shape %v", scalar.Shape()))
	}
	if scalar.Device() != x.Device() {
		panic(fmt.Sprintf("scale: scalar on %s, tensor on %s", scalar.Device(), x.Device()))
	}
	scale(x, scalar.Item())
}

// ClampInPlace limits every element of x to [-limit, limit].
func (cpu *CPUBackend) ClampInPlace(x *tensor.RawTensor, limit float64) {
	switch x.DType() {
	case tensor.Float32:
		hi := float32(limit)
		data := x.AsFloat32()
		parallel.Chunks(len(data), cpu.parallel, func(start, end int) {
			for i := start; i < end; i++ {
				data[i] = min(max(data[i], -hi), hi)
			}
		})
	case tensor.Float64:
		data := x.AsFloat64()
		parallel.Chunks(len(data), cpu.parallel, func(start, end int) {
			for i := start; i < end; i++ {
				data[i] = min(max(data[i], -limit), limit)
			}
		})
	}
}

func scale(x *tensor.RawTensor, s float64) {
	switch x.DType() {
	case tensor.Float32:
		data := x.AsFloat32()
		blas32.Scal(float32(s), blas32.Vector{N: len(data), Data: data, Inc: 1})
	case tensor.Float64:
		floats.Scale(s, x.AsFloat64())
	}
}
