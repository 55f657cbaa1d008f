package precision

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/precision/internal/autodiff"
	"github.com/born-ml/precision/internal/backend/cpu"
	"github.com/born-ml/precision/internal/config"
	"github.com/born-ml/precision/internal/logger"
	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/optim"
	"github.com/born-ml/precision/internal/tensor"
)

type model struct {
	params []*nn.Parameter
}

func (m *model) Parameters() []*nn.Parameter {
	return m.params
}

func names(seq func(func(*nn.Parameter) bool)) []string {
	var out []string
	for p := range seq {
		out = append(out, p.Name())
	}
	return out
}

func TestMasterParams_GroupThenPositionOrder(t *testing.T) {
	a := newParam(t, "a", tensor.Shape{1}, nil, tensor.Host)
	b := newParam(t, "b", tensor.Shape{1}, nil, tensor.Host)
	c := newParam(t, "c", tensor.Shape{1}, nil, tensor.Host)

	opt := optim.NewSGD([]*nn.Parameter{a, b}, optim.SGDConfig{}, cpu.New())
	require.NoError(t, opt.AddParamGroup(optim.ParamGroup{Params: []*nn.Parameter{c}, LR: 0.5}))

	seq := MasterParams(opt)
	assert.Equal(t, []string{"a", "b", "c"}, names(seq))
	// Restartable.
	assert.Equal(t, []string{"a", "b", "c"}, names(seq))
	// Borrowed, not copied.
	assert.Same(t, a, slices.Collect(seq)[0])

	// Early termination stops iteration.
	var seen []string
	for p := range seq {
		seen = append(seen, p.Name())
		if p.Name() == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestMasterParams_Lazy(t *testing.T) {
	a := newParam(t, "a", tensor.Shape{1}, nil, tensor.Host)
	opt := optim.NewSGD([]*nn.Parameter{a}, optim.SGDConfig{}, cpu.New())
	seq := MasterParams(opt)

	b := newParam(t, "b", tensor.Shape{1}, nil, tensor.Host)
	require.NoError(t, opt.AddParamGroup(optim.ParamGroup{Params: []*nn.Parameter{b}}))

	assert.Equal(t, []string{"a", "b"}, names(seq))
}

func TestNew(t *testing.T) {
	p, err := New(config.Default(), WithLogger(logger.Nop()))
	require.NoError(t, err)
	assert.Equal(t, 32, p.Precision())
	assert.Equal(t, tensor.Float32, p.DataType())
	assert.Equal(t, Epsilon, p.Clipper().Epsilon())

	cfg := config.Default()
	cfg.Precision = 64
	cfg.Epsilon = 1e-8
	p, err = New(cfg, WithLogger(logger.Nop()))
	require.NoError(t, err)
	assert.Equal(t, 64, p.Precision())
	assert.Equal(t, tensor.Float64, p.DataType())
	assert.Equal(t, 1e-8, p.Clipper().Epsilon())

	cfg.Precision = 16
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestConnect_CastsToPluginPrecision(t *testing.T) {
	cfg := config.Default()
	cfg.Precision = 64
	p, err := New(cfg, WithLogger(logger.Nop()))
	require.NoError(t, err)

	w := newParam(t, "w", tensor.Shape{2}, []float32{1, 2}, tensor.Host)
	m := &model{params: []*nn.Parameter{w}}
	opt := optim.NewSGD(m.params, optim.SGDConfig{}, cpu.New())

	gotModel, gotOpts, gotScheds, err := p.Connect(m, []optim.Optimizer{opt}, nil)
	require.NoError(t, err)
	assert.Same(t, m, gotModel)
	assert.Len(t, gotOpts, 1)
	assert.Empty(t, gotScheds)

	assert.Equal(t, tensor.Float64, w.Tensor().DType())
	assert.Equal(t, tensor.Float64, w.Grad().DType())
	assert.Equal(t, []float64{1, 2}, w.Grad().AsFloat64())
}

func TestClipGradients_UsesMasterParams(t *testing.T) {
	a := newParam(t, "a", tensor.Shape{1}, []float32{3}, tensor.Host)
	b := newParam(t, "b", tensor.Shape{1}, []float32{4}, tensor.Host)
	opt := optim.NewSGD([]*nn.Parameter{a}, optim.SGDConfig{}, cpu.New())
	require.NoError(t, opt.AddParamGroup(optim.ParamGroup{Params: []*nn.Parameter{b}}))

	require.NoError(t, newPlugin(t).ClipGradients(opt, ptr(1), 2))
	assert.InDelta(t, 0.6, a.Grad().Item(), 1e-5)
	assert.InDelta(t, 0.8, b.Grad().Item(), 1e-5)
}

func TestClipConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*config.Config)
		want []float64
	}{
		{"disabled", func(*config.Config) {}, []float64{-30, 40}},
		{"norm", func(c *config.Config) { c.GradientClipVal = ptr(5) }, []float64{-3, 4}},
		{"inf norm", func(c *config.Config) {
			c.GradientClipVal = ptr(4)
			c.NormType = config.NormType(math.Inf(1))
		}, []float64{-3, 4}},
		{"value", func(c *config.Config) {
			c.GradientClipVal = ptr(10)
			c.GradientClipAlgorithm = config.ClipByValue
		}, []float64{-10, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.cfg(&cfg)
			p, err := New(cfg, WithLogger(logger.Nop()))
			require.NoError(t, err)

			w := newParam(t, "w", tensor.Shape{2}, []float32{-30, 40}, tensor.Host)
			opt := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{}, cpu.New())

			require.NoError(t, p.ClipConfigured(opt))
			assert.InDeltaSlice(t, tt.want, w.Grad().Float64s(), 1e-4)
		})
	}
}

func TestTrainingStep_BackwardClipStep(t *testing.T) {
	backend := cpu.New()
	wData, err := tensor.FromFloat32([]float32{1, 1}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)
	x, err := tensor.FromFloat32([]float32{30, 40}, tensor.Shape{2}, tensor.Host)
	require.NoError(t, err)

	w := nn.NewParameter("w", wData)
	opt := optim.NewSGD([]*nn.Parameter{w}, optim.SGDConfig{LR: 1}, backend)
	p := newPlugin(t)

	tape := autodiff.NewGradientTape(backend)
	loss := tape.Leaf(w).Mul(tape.Constant(x)).Sum()
	_, err = p.Backward(loss, opt, 0, false, Manual{})
	require.NoError(t, err)
	require.NoError(t, p.ClipGradients(opt, ptr(1), 2))
	require.NoError(t, opt.Step())

	// grad [30, 40] clipped to [0.6, 0.8]; w -= grad
	assert.InDeltaSlice(t, []float64{0.4, 0.2}, w.Tensor().Float64s(), 1e-5)
}

func TestClipGradients_AfterBackwardOfSharedSum(t *testing.T) {
	p := newParam(t, "p", tensor.Shape{2}, nil, tensor.Host)
	q := newParam(t, "q", tensor.Shape{2}, nil, tensor.Host)
	opt := optim.NewSGD([]*nn.Parameter{p, q}, optim.SGDConfig{LR: 0.1}, cpu.New())
	plugin := newPlugin(t)

	tape := autodiff.NewGradientTape(cpu.New())
	loss := tape.Leaf(p).Add(tape.Leaf(q)).Sum()
	_, err := plugin.Backward(loss, opt, 0, false, Manual{})
	require.NoError(t, err)
	require.NotSame(t, p.Grad(), q.Grad())
	require.InDelta(t, 2.0, l2(p, q), 1e-6)

	require.NoError(t, plugin.ClipGradients(opt, ptr(1), 2))
	assert.InDelta(t, 1.0, l2(p, q), 1e-5)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, p.Grad().Float64s(), 1e-5)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, q.Grad().Float64s(), 1e-5)
}
