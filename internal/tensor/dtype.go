// Package tensor provides the float tensors that parameters and gradients are stored in.
package tensor

import "fmt"

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// Bits returns the precision of the data type in bits.
func (dt DataType) Bits() int {
	return dt.Size() * 8
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// DataTypeForBits maps a precision in bits (32 or 64) to its DataType.
func DataTypeForBits(bits int) (DataType, error) {
	switch bits {
	case 32:
		return Float32, nil
	case 64:
		return Float64, nil
	default:
		return 0, fmt.Errorf("unsupported precision %d (must be 32 or 64)", bits)
	}
}
