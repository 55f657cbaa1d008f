// Package autodiff implements reverse-mode automatic differentiation for
// losses built from trainable parameters.
//
// Architecture:
//   - GradientTape: records operations during the forward pass
//   - Variable: a tensor plus the tape that produced it
//   - Operation interface (package ops): each op implements its backward pass
//   - Backward: walks the tape in reverse and accumulates into Parameter grads
//
// Usage:
//
//	tape := autodiff.NewGradientTape(cpu.New())
//	w := tape.Leaf(weight)          // weight is an *nn.Parameter
//	x := tape.Constant(input)
//	loss := w.Mul(x).Sum()
//	if err := autodiff.Backward(loss); err != nil {
//	    return err
//	}
//	fmt.Println(weight.Grad())
package autodiff

import (
	"github.com/born-ml/precision/internal/autodiff/ops"
	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass.
//
// A tape holds references to every intermediate tensor of the graph it
// records. Clear (or a Backward without RetainGraph) releases them.
type GradientTape struct {
	backend    tensor.Backend
	operations []ops.Operation                    // Recorded operations (in execution order)
	leaves     map[*tensor.RawTensor]*nn.Parameter // Parameter tensors that receive gradients
	order      []*tensor.RawTensor                 // Leaves in registration order
	generation int                                // Bumped on every Clear
}

// NewGradientTape creates a new gradient tape computing on backend.
func NewGradientTape(backend tensor.Backend) *GradientTape {
	return &GradientTape{
		backend:    backend,
		operations: make([]ops.Operation, 0, 64), // Pre-allocate for common case
		leaves:     make(map[*tensor.RawTensor]*nn.Parameter),
	}
}

// Backend returns the backend the tape computes on.
func (t *GradientTape) Backend() tensor.Backend {
	return t.backend
}

// Leaf registers param as a differentiable input and returns its Variable.
func (t *GradientTape) Leaf(param *nn.Parameter) *Variable {
	raw := param.Tensor()
	if _, ok := t.leaves[raw]; !ok {
		t.order = append(t.order, raw)
	}
	t.leaves[raw] = param
	return t.variable(param.Tensor())
}

// Constant wraps raw as a Variable that receives no gradient.
func (t *GradientTape) Constant(raw *tensor.RawTensor) *Variable {
	return t.variable(raw)
}

// Record adds an operation to the tape.
func (t *GradientTape) Record(op ops.Operation) {
	t.operations = append(t.operations, op)
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Clear resets the tape, dropping all recorded operations and leaves.
// Variables produced before Clear can no longer be differentiated.
func (t *GradientTape) Clear() {
	clear(t.operations) // drop references held by the backing array
	t.operations = t.operations[:0]
	t.leaves = make(map[*tensor.RawTensor]*nn.Parameter)
	t.order = nil
	t.generation++
}

// ancestors counts the recorded operations that out depends on.
func (t *GradientTape) ancestors(out *tensor.RawTensor) int {
	reachable := map[*tensor.RawTensor]bool{out: true}
	count := 0
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		if !reachable[op.Output()] {
			continue
		}
		count++
		for _, in := range op.Inputs() {
			reachable[in] = true
		}
	}
	return count
}

// gradients walks the tape backwards from out, seeded with outputGrad.
//
// Algorithm:
//  1. Start with the output gradient (ones for a scalar loss)
//  2. Walk operations in reverse order
//  3. For each operation, compute input gradients using chain rule
//  4. Accumulate gradients when the same tensor is used multiple times
func (t *GradientTape) gradients(out, outputGrad *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := map[*tensor.RawTensor]*tensor.RawTensor{out: outputGrad}

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		opGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(opGrad, t.backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = t.backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads
}

func (t *GradientTape) variable(raw *tensor.RawTensor) *Variable {
	return &Variable{raw: raw, backend: t.backend, tape: t, generation: t.generation}
}
