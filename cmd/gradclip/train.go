package main

import (
	"fmt"

	"github.com/born-ml/precision/internal/autodiff"
	"github.com/born-ml/precision/internal/backend/cpu"
	"github.com/born-ml/precision/internal/config"
	"github.com/born-ml/precision/internal/logger"
	"github.com/born-ml/precision/internal/metrics"
	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/optim"
	"github.com/born-ml/precision/internal/precision"
	"github.com/born-ml/precision/internal/tensor"
)

// Samples of y = 3*x0 - 2*x1 + 1.
var (
	inputs = [][]float64{
		{1, 0}, {0, 1}, {1, 1}, {2, -1}, {-1, 3}, {0.5, 0.5},
	}
	targets = []float64{4, -1, 2, 9, -8, 1.5}
)

type trainOptions struct {
	Steps int
	LR    float64
}

type trainResult struct {
	Steps     int
	FinalLoss float64
	Losses    []*autodiff.Variable
	Weights   []float64
	Bias      float64
}

// linearModel is y = sum(w * x) + b.
type linearModel struct {
	w, b *nn.Parameter
}

func (m *linearModel) Parameters() []*nn.Parameter {
	return []*nn.Parameter{m.w, m.b}
}

// loss builds the mean squared error over all samples on tape.
func (m *linearModel) loss(tape *autodiff.GradientTape, dtype tensor.DataType) (*autodiff.Variable, error) {
	w := tape.Leaf(m.w)
	b := tape.Leaf(m.b)

	var total *autodiff.Variable
	for i, x := range inputs {
		xRaw, err := tensor.FromFloat64(x, tensor.Shape{len(x)}, tensor.Host)
		if err != nil {
			return nil, err
		}
		if xRaw, err = xRaw.AsType(dtype); err != nil {
			return nil, err
		}
		y := tape.Constant(tensor.Scalar(targets[i], dtype, tensor.Host))

		diff := w.Mul(tape.Constant(xRaw)).Sum().Add(b).Sub(y)
		sq := diff.Square()
		if total == nil {
			total = sq
		} else {
			total = total.Add(sq)
		}
	}
	return total.MulScalar(1 / float64(len(inputs))), nil
}

// train fits the linear model with the precision plugin driving backward
// and clipping.
func train(cfg config.Config, opts trainOptions, log *logger.Logger, m *metrics.Metrics) (*trainResult, error) {
	backend := cpu.New()
	plugin, err := precision.New(cfg, precision.WithLogger(log), precision.WithMetrics(m), precision.WithBackend(backend))
	if err != nil {
		return nil, err
	}

	wData, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.Host)
	if err != nil {
		return nil, err
	}
	bData, err := tensor.NewRaw(tensor.Shape{}, tensor.Float32, tensor.Host)
	if err != nil {
		return nil, err
	}
	model := &linearModel{w: nn.NewParameter("w", wData), b: nn.NewParameter("b", bData)}

	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: opts.LR}, backend)
	if _, _, _, err := plugin.Connect(model, []optim.Optimizer{opt}, nil); err != nil {
		return nil, err
	}

	result := &trainResult{Steps: opts.Steps}
	for step := range opts.Steps {
		opt.ZeroGrad()

		tape := autodiff.NewGradientTape(backend)
		loss, err := model.loss(tape, plugin.DataType())
		if err != nil {
			return nil, err
		}

		detached, err := plugin.Backward(loss, opt, 0, false, precision.Manual{})
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		if err := plugin.ClipConfigured(opt); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		if err := opt.Step(); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		result.Losses = append(result.Losses, detached)
		result.FinalLoss = detached.Item()
		if step%10 == 0 {
			log.Info("step", "step", step, "loss", result.FinalLoss)
		}
	}

	result.Weights = model.w.Tensor().Float64s()
	result.Bias = model.b.Tensor().At(0)
	return result, nil
}
