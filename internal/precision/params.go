package precision

import (
	"iter"

	"github.com/born-ml/precision/internal/nn"
	"github.com/born-ml/precision/internal/optim"
)

// MasterParams yields the parameters an optimizer updates, group by group
// and in position order within each group.
//
// The sequence is lazy and restartable: every range over it walks the
// optimizer's current groups again. Parameters are borrowed, not copied.
func MasterParams(opt optim.Optimizer) iter.Seq[*nn.Parameter] {
	return func(yield func(*nn.Parameter) bool) {
		for _, group := range opt.ParamGroups() {
			for _, p := range group.Params {
				if !yield(p) {
					return
				}
			}
		}
	}
}

// Params adapts a plain slice to the sequence type Clip consumes.
func Params(params ...*nn.Parameter) iter.Seq[*nn.Parameter] {
	return func(yield func(*nn.Parameter) bool) {
		for _, p := range params {
			if !yield(p) {
				return
			}
		}
	}
}
