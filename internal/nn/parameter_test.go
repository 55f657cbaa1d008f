package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/precision/internal/backend/cpu"
	"github.com/born-ml/precision/internal/tensor"
)

func TestParameter(t *testing.T) {
	data, err := tensor.FromFloat32([]float32{1, 2}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)
	p := NewParameter("linear.weight", data)

	assert.Equal(t, "linear.weight", p.Name())
	assert.Same(t, data, p.Tensor())
	assert.Equal(t, tensor.Host, p.Device())
	assert.False(t, p.HasGrad())
	assert.Nil(t, p.Grad())

	wrong, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.Host)
	require.NoError(t, err)
	assert.Error(t, p.SetGrad(wrong))

	g, err := tensor.FromFloat32([]float32{0.5, 0.5}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)
	require.NoError(t, p.AccumulateGrad(g, cpu.New()))
	require.NoError(t, p.AccumulateGrad(g, cpu.New()))
	assert.Equal(t, []float32{1, 1}, p.Grad().AsFloat32())

	p.ZeroGrad()
	assert.False(t, p.HasGrad())
}

func TestParameterCast(t *testing.T) {
	data, err := tensor.FromFloat32([]float32{1, 2}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)
	p := NewParameter("w", data)

	require.NoError(t, p.Cast(tensor.Float64))
	assert.Equal(t, []float64{1, 2}, p.Tensor().AsFloat64())
	assert.Nil(t, p.Grad())
}

func TestAccumulateGradCopiesFirstGradient(t *testing.T) {
	data, err := tensor.FromFloat32([]float32{0, 0}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)
	grad, err := tensor.FromFloat32([]float32{1, 2}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)
	p := NewParameter("w", data)
	q := NewParameter("v", data.Clone())
	backend := cpu.New()

	require.NoError(t, p.AccumulateGrad(grad, backend))
	require.NoError(t, q.AccumulateGrad(grad, backend))
	require.NotSame(t, grad, p.Grad())
	require.NotSame(t, p.Grad(), q.Grad())

	p.Grad().SetAt(0, 9)
	assert.Equal(t, []float32{1, 2}, grad.AsFloat32())
	assert.Equal(t, []float32{1, 2}, q.Grad().AsFloat32())
}
