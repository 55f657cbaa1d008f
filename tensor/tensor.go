// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the float tensors that hold parameters and gradients.
//
// # Overview
//
// A RawTensor is a contiguous, row-major float32 or float64 array tagged
// with the device it is placed on. Storage is host memory; the device tag
// drives transfer and compatibility checks:
//
//	gpu := tensor.NewDevice(tensor.CUDA, 0)
//	g, _ := tensor.FromFloat32([]float32{3, 4}, tensor.Shape{2}, gpu)
//	onHost, err := g.To(tensor.Host)
package tensor

import "github.com/born-ml/precision/internal/tensor"

// RawTensor is the tensor type shared by parameters, gradients and backends.
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// Device is the placement of a tensor.
type Device = tensor.Device

// DeviceKind identifies the family of a compute device.
type DeviceKind = tensor.DeviceKind

// Backend defines the compute operations backends implement.
type Backend = tensor.Backend

// Data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// Device kinds.
const (
	CPU    = tensor.CPU
	CUDA   = tensor.CUDA
	Vulkan = tensor.Vulkan
	Metal  = tensor.Metal
	WebGPU = tensor.WebGPU
)

// Host is the default CPU device.
var Host = tensor.Host

// ErrDeviceMismatch is returned when data cannot move between two devices.
var ErrDeviceMismatch = tensor.ErrDeviceMismatch

// NewDevice returns the device of the given kind and ordinal.
func NewDevice(kind DeviceKind, index int) Device {
	return tensor.NewDevice(kind, index)
}

// NewRaw creates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromFloat32 creates a float32 tensor from a copy of data.
func FromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape, device)
}

// FromFloat64 creates a float64 tensor from a copy of data.
func FromFloat64(data []float64, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromFloat64(data, shape, device)
}

// Scalar creates a 0-D tensor holding v.
func Scalar(v float64, dtype DataType, device Device) *RawTensor {
	return tensor.Scalar(v, dtype, device)
}
