package optim

import (
	"fmt"
	"strings"

	"github.com/arca-ml/arca/internal/nn"
	"github.com/arca-ml/arca/internal/tensor"
)

// SGDConfig configures the SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor, 0 disables momentum
}

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum, each step performs:
//
//	p = p - lr * g
//
// With momentum, a velocity buffer accumulates gradients:
//
//	v = momentum * v + g
//	p = p - lr * v
//
// Velocity buffers are created lazily on the first step and serialized
// under "velocity.<index>" keys.
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[int]*tensor.RawTensor
	backend    B
}

// NewSGD creates an SGD optimizer for the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	lr := config.LR
	if lr == 0 {
		lr = 0.01
	}

	return &SGD[B]{
		params:     params,
		lr:         lr,
		momentum:   config.Momentum,
		velocities: make(map[int]*tensor.RawTensor),
		backend:    backend,
	}
}

// Step applies one SGD update to every parameter that has a gradient.
func (s *SGD[B]) Step() {
	for i, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		paramData := param.Tensor().Raw().AsFloat32()
		gradData := grad.Raw().AsFloat32()

		if s.momentum != 0 {
			velocity, ok := s.velocities[i]
			if !ok {
				velocity = zerosLike(param.Tensor().Raw())
				s.velocities[i] = velocity
			}
			velocityData := velocity.AsFloat32()

			for j := range paramData {
				velocityData[j] = s.momentum*velocityData[j] + gradData[j]
				paramData[j] -= s.lr * velocityData[j]
			}
		} else {
			for j := range paramData {
				paramData[j] -= s.lr * gradData[j]
			}
		}
	}
}

// ZeroGrad clears the gradients of all managed parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float32 {
	return s.lr
}

// SetLR sets the learning rate, e.g. for learning rate schedules.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}

// Type returns "SGD".
func (s *SGD[B]) Type() string {
	return "SGD"
}

// Config returns the optimizer's hyperparameters.
func (s *SGD[B]) Config() map[string]any {
	return map[string]any{
		"learning_rate": s.lr,
		"momentum":      s.momentum,
	}
}

// StateDict returns the velocity buffers under "velocity.<index>" keys.
//
// Without momentum there is no state and the dict is empty.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return stateDict
	}

	for i := range s.params {
		if velocity, ok := s.velocities[i]; ok {
			stateDict[fmt.Sprintf("velocity.%d", i)] = velocity
		}
	}
	return stateDict
}

// LoadStateDict restores velocity buffers saved by StateDict.
//
// Keys must be "velocity.<index>" with indices in range and shapes
// matching the corresponding parameters. Velocities absent from the
// dict stay lazily initialized. Validation runs before any state is
// replaced.
func (s *SGD[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	loaded := make(map[int]*tensor.RawTensor)

	for name, raw := range stateDict {
		index, ok := strings.CutPrefix(name, "velocity.")
		if !ok {
			return fmt.Errorf("unexpected key %q in SGD state dict", name)
		}
		i, err := stateIndex(name, index, len(s.params))
		if err != nil {
			return err
		}
		if !raw.Shape().Equal(s.params[i].Tensor().Shape()) {
			return fmt.Errorf("%s shape mismatch: expected %v, got %v",
				name, s.params[i].Tensor().Shape(), raw.Shape())
		}

		velocity := zerosLike(raw)
		if err := velocity.CopyFrom(raw); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
		loaded[i] = velocity
	}

	for i, velocity := range loaded {
		s.velocities[i] = velocity
	}
	return nil
}
