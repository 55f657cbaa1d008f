package precision

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/precision/internal/autodiff"
	"github.com/born-ml/precision/internal/backend/cpu"
	"github.com/born-ml/precision/internal/config"
	"github.com/born-ml/precision/internal/logger"
	"github.com/born-ml/precision/internal/metrics"
	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/optim"
	"github.com/born-ml/precision/internal/tensor"
)

// dotLoss builds loss = sum(w * x) with w = [1, 2, 3] and x = [4, 5, 6].
func dotLoss(t *testing.T) (*autodiff.Variable, *nn.Parameter, optim.Optimizer) {
	t.Helper()
	backend := cpu.New()
	wData, err := tensor.FromFloat32([]float32{1, 2, 3}, tensor.Shape{3}, tensor.Host)
	require.NoError(t, err)
	x, err := tensor.FromFloat32([]float32{4, 5, 6}, tensor.Shape{3}, tensor.Host)
	require.NoError(t, err)

	w := nn.NewParameter("w", wData)
	tape := autodiff.NewGradientTape(backend)
	loss := tape.Leaf(w).Mul(tape.Constant(x)).Sum()
	opt := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{LR: 0.1}, backend)
	return loss, w, opt
}

func newPlugin(t *testing.T, opts ...Option) *Plugin {
	t.Helper()
	p, err := New(config.Default(), append([]Option{WithLogger(logger.Nop())}, opts...)...)
	require.NoError(t, err)
	return p
}

func TestBackward_ManualDetachesLoss(t *testing.T) {
	loss, w, opt := dotLoss(t)
	p := newPlugin(t)

	detached, err := p.Backward(loss, opt, 0, false, Manual{Options: []autodiff.BackwardOption{autodiff.RetainGraph()}})
	require.NoError(t, err)

	assert.Equal(t, []float32{4, 5, 6}, w.Grad().AsFloat32())
	assert.InDelta(t, 32.0, detached.Item(), 1e-6)
	assert.True(t, detached.IsDetached())
	assert.Equal(t, 0, autodiff.Ancestors(detached))
	// The graph is retained, so the original handle still reaches it.
	assert.Equal(t, 2, autodiff.Ancestors(loss))
}

func TestBackward_ManualReleasesGraph(t *testing.T) {
	loss, _, opt := dotLoss(t)
	p := newPlugin(t)

	detached, err := p.Backward(loss, opt, 0, false, Manual{})
	require.NoError(t, err)
	assert.Equal(t, 0, autodiff.Ancestors(detached))

	_, err = p.Backward(loss, opt, 0, false, Manual{})
	assert.ErrorIs(t, err, autodiff.ErrGraphReleased)

	_, err = p.Backward(detached, opt, 0, false, Manual{})
	assert.ErrorIs(t, err, autodiff.ErrDetached)
}

func TestBackward_ManualNonScalarSeed(t *testing.T) {
	backend := cpu.New()
	wData, err := tensor.FromFloat32([]float32{1, 2}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)
	w := nn.NewParameter("w", wData)
	tape := autodiff.NewGradientTape(backend)
	out := tape.Leaf(w).MulScalar(3) // non-scalar output

	p := newPlugin(t)
	opt := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{}, backend)

	_, err = p.Backward(out, opt, 0, false, Manual{})
	require.ErrorIs(t, err, autodiff.ErrNonScalarLoss)
	assert.False(t, w.HasGrad())

	seed, err := tensor.FromFloat32([]float32{1, 10}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)
	detached, err := p.Backward(out, opt, 0, false, Manual{Options: []autodiff.BackwardOption{autodiff.WithGradient(seed)}})
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 30}, w.Grad().AsFloat32())
	assert.True(t, detached.IsDetached())
}

func TestBackward_AutomaticDelegatesToHook(t *testing.T) {
	loss, w, opt := dotLoss(t)
	p := newPlugin(t)

	var gotOpt optim.Optimizer
	gotIdx := -1
	hook := BackwardHookFunc(func(l *autodiff.Variable, o optim.Optimizer, idx int) error {
		gotOpt, gotIdx = o, idx
		return autodiff.Backward(l, autodiff.RetainGraph())
	})

	detached, err := p.Backward(loss, opt, 1, true, Automatic{Hook: hook})
	require.NoError(t, err)

	assert.Same(t, opt, gotOpt)
	assert.Equal(t, 1, gotIdx)
	assert.Equal(t, []float32{4, 5, 6}, w.Grad().AsFloat32())
	assert.Equal(t, 0, autodiff.Ancestors(detached))
	assert.Positive(t, autodiff.Ancestors(loss))
}

func TestBackward_DefaultHook(t *testing.T) {
	loss, w, opt := dotLoss(t)

	_, err := newPlugin(t).Backward(loss, opt, 0, false, Automatic{Hook: DefaultBackwardHook})
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 5, 6}, w.Grad().AsFloat32())
}

func TestBackward_Errors(t *testing.T) {
	loss, _, opt := dotLoss(t)
	p := newPlugin(t)

	_, err := p.Backward(loss, opt, 0, false, Automatic{})
	assert.ErrorIs(t, err, ErrNoBackwardHook)

	boom := errors.New("boom")
	_, err = p.Backward(loss, opt, 3, false, Automatic{Hook: BackwardHookFunc(
		func(*autodiff.Variable, optim.Optimizer, int) error { return boom })})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "optimizer 3")

	_, err = p.Backward(loss, opt, 0, false, nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestBackward_AccumulatesAcrossCalls(t *testing.T) {
	backend := cpu.New()
	wData, err := tensor.FromFloat32([]float32{2}, tensor.Shape{1}, tensor.Host)
	require.NoError(t, err)
	w := nn.NewParameter("w", wData)
	opt := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{}, backend)
	p := newPlugin(t)

	for range 2 {
		tape := autodiff.NewGradientTape(backend)
		loss := tape.Leaf(w).Square().Sum() // d/dw = 2w = 4
		_, err := p.Backward(loss, opt, 0, true, Manual{})
		require.NoError(t, err)
	}
	assert.InDelta(t, 8.0, w.Grad().Item(), 1e-6)
}

func TestBackward_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	p := newPlugin(t, WithMetrics(m))

	loss, _, opt := dotLoss(t)
	_, err := p.Backward(loss, opt, 0, false, Manual{})
	require.NoError(t, err)

	loss, _, opt = dotLoss(t)
	_, err = p.Backward(loss, opt, 0, false, Automatic{Hook: DefaultBackwardHook})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackwardPasses.WithLabelValues("manual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackwardPasses.WithLabelValues("automatic")))
}
