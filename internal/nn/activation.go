package nn

import (
	"github.com/arca-ml/arca/internal/tensor"
)

// ReLUBackend is an interface for backends that support ReLU activation.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// SigmoidBackend is an interface for backends that support Sigmoid activation.
type SigmoidBackend interface {
	Sigmoid(*tensor.RawTensor) *tensor.RawTensor
}

// TanhBackend is an interface for backends that support Tanh activation.
type TanhBackend interface {
	Tanh(*tensor.RawTensor) *tensor.RawTensor
}

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// Example:
//
//	relu := nn.NewReLU[Backend]()
//	output := relu.Forward(input)  // All negative values become 0
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()

	if reluBackend, ok := any(backend).(ReLUBackend); ok {
		return tensor.New[float32, B](reluBackend.ReLU(input.Raw()), backend)
	}

	panic("ReLU: backend must provide a ReLU operation (see backend/cpu)")
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map (ReLU has no state).
func (r *ReLU[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict rejects any keys (ReLU has no state).
func (r *ReLU[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadStateDict(r.StateDict(), stateDict)
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
//
// Sigmoid squashes values to the range (0, 1), making it useful for
// binary classification outputs.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()

	if sigmoidBackend, ok := any(backend).(SigmoidBackend); ok {
		return tensor.New[float32, B](sigmoidBackend.Sigmoid(input.Raw()), backend)
	}

	panic("Sigmoid: backend must provide a Sigmoid operation (see backend/cpu)")
}

// Parameters returns nil (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map (Sigmoid has no state).
func (s *Sigmoid[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict rejects any keys (Sigmoid has no state).
func (s *Sigmoid[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadStateDict(s.StateDict(), stateDict)
}

// Tanh is a hyperbolic tangent activation module.
//
// Applies the element-wise function: tanh(x), squashing values to the
// range (-1, 1).
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies Tanh activation.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()

	if tanhBackend, ok := any(backend).(TanhBackend); ok {
		return tensor.New[float32, B](tanhBackend.Tanh(input.Raw()), backend)
	}

	panic("Tanh: backend must provide a Tanh operation (see backend/cpu)")
}

// Parameters returns nil (Tanh has no trainable parameters).
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map (Tanh has no state).
func (t *Tanh[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict rejects any keys (Tanh has no state).
func (t *Tanh[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadStateDict(t.StateDict(), stateDict)
}

// Softmax is a softmax activation module.
//
// Normalizes values along the given dimension so they sum to 1, which
// turns logits into a probability distribution. Softmax is part of the
// core backend interface, so no capability check is needed.
type Softmax[B tensor.Backend] struct {
	dim int
}

// NewSoftmax creates a new Softmax module operating along dim.
//
// Negative dims count from the end, so -1 is the last dimension.
func NewSoftmax[B tensor.Backend](dim int) *Softmax[B] {
	return &Softmax[B]{dim: dim}
}

// Forward applies softmax along the configured dimension.
func (s *Softmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Softmax(s.dim)
}

// Parameters returns nil (Softmax has no trainable parameters).
func (s *Softmax[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map (Softmax has no state).
func (s *Softmax[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict rejects any keys (Softmax has no state).
func (s *Softmax[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadStateDict(s.StateDict(), stateDict)
}
