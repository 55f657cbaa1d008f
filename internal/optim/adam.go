package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	groups
	beta1 float64
	beta2 float64
	eps   float64
	t     int                                 // Timestep for bias correction
	m     map[*nn.Parameter]*tensor.RawTensor // First moment estimates
	v     map[*nn.Parameter]*tensor.RawTensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer with a single parameter group.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		groups: newGroups(params, config.LR),
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*tensor.RawTensor),
		v:      make(map[*nn.Parameter]*tensor.RawTensor),
	}
}

// Step performs a single optimization step using the Adam algorithm.
//
// Parameters with no gradient are skipped.
func (a *Adam) Step() error {
	a.t++
	bc1 := 1 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, group := range a.list {
		for _, param := range group.Params {
			grad, err := gradOf(param)
			if err != nil {
				return fmt.Errorf("adam: %w", err)
			}
			if grad == nil {
				continue
			}

			m, v := a.moments(param)
			data := param.Tensor()
			for i := range data.NumElements() {
				g := grad.At(i)
				mi := a.beta1*m.At(i) + (1-a.beta1)*g
				vi := a.beta2*v.At(i) + (1-a.beta2)*g*g
				m.SetAt(i, mi)
				v.SetAt(i, vi)
				data.SetAt(i, data.At(i)-group.LR*(mi/bc1)/(math.Sqrt(vi/bc2)+a.eps))
			}
		}
	}
	return nil
}

// moments returns the moment buffers for param, allocating zeros on first use.
func (a *Adam) moments(param *nn.Parameter) (m, v *tensor.RawTensor) {
	m, ok := a.m[param]
	if !ok {
		data := param.Tensor()
		m, _ = tensor.NewRaw(data.Shape(), data.DType(), data.Device())
		v, _ = tensor.NewRaw(data.Shape(), data.DType(), data.Device())
		a.m[param] = m
		a.v[param] = v
		return m, v
	}
	return m, a.v[param]
}
