// Package optim implements optimizers for training neural networks.
//
// Optimizers update model parameters in place from the gradients stored
// on the parameters themselves: set gradients with Parameter.SetGrad,
// then call Step. Parameters without a gradient are skipped.
//
// Every optimizer serializes its internal state (momentum buffers,
// moment estimates, step counts) through StateDict / LoadStateDict, so
// a training run resumed from a checkpoint continues exactly where it
// stopped. The state dict keys index parameters by their position in
// the slice passed to the constructor, which must therefore be the same
// across save and load.
package optim

import (
	"fmt"
	"strconv"

	"github.com/arca-ml/arca/internal/tensor"
)

// Optimizer is the interface shared by all optimizers.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient.
	Step()

	// ZeroGrad clears the gradients of all managed parameters.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32

	// StateDict returns the optimizer's internal state for checkpoints.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict restores internal state saved by StateDict.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error

	// Type returns the optimizer's type name ("SGD", "Adam").
	Type() string

	// Config returns the optimizer's hyperparameters.
	Config() map[string]any
}

// zerosLike allocates a zero-filled tensor with the same shape and dtype
// as raw.
func zerosLike(raw *tensor.RawTensor) *tensor.RawTensor {
	t, err := tensor.NewRaw(raw.Shape(), raw.DType())
	if err != nil {
		panic(err)
	}
	return t
}

// stateIndex parses the parameter index out of a state dict key such as
// "velocity.3" or "m.0". index is the part after the prefix, name the
// full key for error reporting.
func stateIndex(name, index string, numParams int) (int, error) {
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= numParams {
		return 0, fmt.Errorf("invalid parameter index in state dict key %q", name)
	}
	return i, nil
}
