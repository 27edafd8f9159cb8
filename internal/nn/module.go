// Package nn implements neural network modules for Arca.
//
// This package provides building blocks for constructing models:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Linear: Fully connected layer
//   - Activations: ReLU, Sigmoid, Tanh, Softmax
//   - Sequential: Container for stacking layers
//   - NewMLP: Convenience constructor for multi-layer perceptrons
//
// Models expose their parameters as flat name -> tensor state dicts, which
// is what the checkpoint package serializes. Design inspired by PyTorch's
// nn.Module but adapted for Go generics.
package nn

import (
	"fmt"

	"github.com/arca-ml/arca/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//   - StateDict: Expose parameters as a flat name -> tensor map
//   - LoadStateDict: Restore parameters from such a map
//
// Modules can be composed to build larger architectures:
//
//	model := nn.NewSequential[Backend](
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[Backend](),
//	    nn.NewLinear(128, 10, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Linear expects [batch_size, in_features].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// parameters (e.g. activation functions) return nil.
	Parameters() []*Parameter[B]

	// StateDict returns the module's parameters as a flat map from
	// parameter name to the live raw tensor backing it.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict restores the module's parameters from a state dict.
	//
	// The incoming dict must match the module's own state dict exactly:
	// same key set, same shape and dtype per tensor. Validation runs
	// before any data is copied, so a failed load leaves the module
	// unchanged.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// loadStateDict copies loaded into the live tensors in current after
// validating the two maps against each other. The key sets must match in
// both directions and every tensor must agree on shape and dtype. All
// validation happens before the first copy, so a mismatch anywhere leaves
// every parameter untouched.
func loadStateDict(current, loaded map[string]*tensor.RawTensor) error {
	for name := range loaded {
		if _, ok := current[name]; !ok {
			return fmt.Errorf("unexpected parameter %q in state dict", name)
		}
	}

	for name, dst := range current {
		src, ok := loaded[name]
		if !ok {
			return fmt.Errorf("missing parameter %q in state dict", name)
		}
		if src == nil {
			return fmt.Errorf("nil tensor for parameter %q in state dict", name)
		}
		if !src.Shape().Equal(dst.Shape()) {
			return fmt.Errorf("parameter %q shape mismatch: expected %v, got %v",
				name, dst.Shape(), src.Shape())
		}
		if src.DType() != dst.DType() {
			return fmt.Errorf("parameter %q dtype mismatch: expected %v, got %v",
				name, dst.DType(), src.DType())
		}
	}

	for name, dst := range current {
		if err := dst.CopyFrom(loaded[name]); err != nil {
			return fmt.Errorf("failed to copy parameter %q: %w", name, err)
		}
	}

	return nil
}
