package precision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/precision/internal/backend/cpu"
	"github.com/born-ml/precision/internal/logger"
	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/tensor"
)

// newParam builds a float32 parameter on device whose gradient is grad
// (nil grad leaves the gradient absent).
func newParam(t *testing.T, name string, shape tensor.Shape, grad []float32, device tensor.Device) *nn.Parameter {
	t.Helper()
	data, err := tensor.NewRaw(shape, tensor.Float32, device)
	require.NoError(t, err)
	p := nn.NewParameter(name, data)
	if grad != nil {
		g, err := tensor.FromFloat32(grad, shape, device)
		require.NoError(t, err)
		require.NoError(t, p.SetGrad(g))
	}
	return p
}

func newClipper() *GradientClipper {
	return NewGradientClipper(cpu.New(), logger.Nop(), nil)
}

func ptr(v float64) *float64 {
	return &v
}

// l2 returns the L2 norm over every gradient element of params.
func l2(params ...*nn.Parameter) float64 {
	sum := 0.0
	for _, p := range params {
		if !p.HasGrad() {
			continue
		}
		for _, v := range p.Grad().Float64s() {
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

// absMax returns the largest absolute gradient element of params.
func absMax(params ...*nn.Parameter) float64 {
	m := 0.0
	for _, p := range params {
		for _, v := range p.Grad().Float64s() {
			m = max(m, math.Abs(v))
		}
	}
	return m
}

// gradBits snapshots gradients as raw bit patterns for exact comparison.
func gradBits(params ...*nn.Parameter) [][]uint32 {
	out := make([][]uint32, len(params))
	for i, p := range params {
		if !p.HasGrad() {
			continue
		}
		for _, v := range p.Grad().AsFloat32() {
			out[i] = append(out[i], math.Float32bits(v))
		}
	}
	return out
}

func newParamFrom(t *testing.T, data, grad *tensor.RawTensor) *nn.Parameter {
	t.Helper()
	p := nn.NewParameter("p", data)
	require.NoError(t, p.SetGrad(grad))
	return p
}
