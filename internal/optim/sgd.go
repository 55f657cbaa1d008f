package optim

import (
	"fmt"

	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	groups
	momentum   float64
	velocities map[*nn.Parameter]*tensor.RawTensor
	backend    tensor.Backend
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer with a single parameter group.
//
// Example:
//
//	sgd := optim.NewSGD(params, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	}, cpu.New())
func NewSGD(params []*nn.Parameter, config SGDConfig, backend tensor.Backend) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		groups:     newGroups(params, config.LR),
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.RawTensor),
		backend:    backend,
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient are skipped.
func (s *SGD) Step() error {
	for _, group := range s.list {
		for _, param := range group.Params {
			grad, err := gradOf(param)
			if err != nil {
				return fmt.Errorf("sgd: %w", err)
			}
			if grad == nil {
				continue
			}

			update := grad
			if s.momentum != 0 {
				update = s.velocity(param, grad)
			}

			updated := s.backend.Sub(param.Tensor(), s.backend.MulScalar(update, group.LR))
			if err := param.Tensor().CopyFrom(updated); err != nil {
				return fmt.Errorf("sgd: parameter %q: %w", param.Name(), err)
			}
		}
	}
	return nil
}

// velocity updates and returns velocity = momentum * velocity + grad.
func (s *SGD) velocity(param *nn.Parameter, grad *tensor.RawTensor) *tensor.RawTensor {
	v, ok := s.velocities[param]
	if !ok {
		// First step: velocity starts at the gradient.
		v = grad.Clone()
		s.velocities[param] = v
		return v
	}
	next := s.backend.Add(s.backend.MulScalar(v, s.momentum), grad)
	_ = v.CopyFrom(next) // shapes match by construction
	return v
}
