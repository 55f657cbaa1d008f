package tensor

import (
	"errors"
	"fmt"
)

// ErrDeviceMismatch is returned when data cannot move between two devices.
var ErrDeviceMismatch = errors.New("device mismatch")

// DeviceKind identifies the family of a compute device.
type DeviceKind int

// Supported device kinds.
const (
	CPU DeviceKind = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device kind name.
func (k DeviceKind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	case Vulkan:
		return "vulkan"
	case Metal:
		return "metal"
	case WebGPU:
		return "webgpu"
	default:
		return "unknown"
	}
}

// Device is the placement of a tensor: a device kind plus an ordinal.
//
// Storage always lives in host memory; the device records where the data
// is considered to reside so transfers and compatibility can be checked.
type Device struct {
	Kind  DeviceKind
	Index int
}

// Host is the default CPU device.
var Host = Device{Kind: CPU}

// NewDevice returns the device of the given kind and ordinal.
func NewDevice(kind DeviceKind, index int) Device {
	return Device{Kind: kind, Index: index}
}

// String formats the device as "kind:index" (or just "cpu" for the host).
func (d Device) String() string {
	if d.Kind == CPU && d.Index == 0 {
		return "cpu"
	}
	return fmt.Sprintf("%s:%d", d.Kind, d.Index)
}

// CanTransfer reports whether data can be copied from d to other.
//
// The host can exchange data with every device, and devices of the same
// kind can exchange data with each other. Accelerators of different kinds
// have no transfer path.
func (d Device) CanTransfer(other Device) bool {
	if d.Kind == other.Kind {
		return true
	}
	return d.Kind == CPU || other.Kind == CPU
}
