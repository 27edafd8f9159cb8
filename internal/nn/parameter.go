package nn

import (
	"github.com/arca-ml/arca/internal/tensor"
)

// Parameter wraps a tensor that is trainable.
//
// Parameters carry a name (used as the key in state dicts), the data
// tensor itself, and an optional gradient tensor of the same shape.
// Optimizers read the gradient to update the data in place.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a new trainable parameter.
//
// The gradient starts out nil and is populated by SetGrad during training.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter's name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter's data tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the parameter's gradient tensor, or nil if no gradient
// has been set.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the parameter's gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the parameter's gradient.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
