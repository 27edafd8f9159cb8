// Copyright 2025 The Arca Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/arca-ml/arca/internal/nn"
	"github.com/arca-ml/arca/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(784, 128, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
//
// Example:
//
//	relu := nn.NewReLU[B]()
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid represents the Sigmoid activation function.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation layer.
//
// Example:
//
//	sigmoid := nn.NewSigmoid[B]()
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh represents the Tanh activation function.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a new Tanh activation layer.
//
// Example:
//
//	tanh := nn.NewTanh[B]()
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Softmax represents the Softmax activation function along a dimension.
type Softmax[B tensor.Backend] = nn.Softmax[B]

// NewSoftmax creates a new Softmax activation layer.
//
// The dim argument selects the dimension to normalize over; negative
// values count from the end (-1 is the last dimension).
//
// Example:
//
//	softmax := nn.NewSoftmax[B](-1)
func NewSoftmax[B tensor.Backend](dim int) *Softmax[B] {
	return nn.NewSoftmax[B](dim)
}

// Sequential

// Sequential represents a sequential container of modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new sequential model.
//
// Example:
//
//	backend := cpu.New()
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*cpu.Backend](),
//	    nn.NewLinear(128, 10, backend),
//	)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// NewMLP creates a multi-layer perceptron from a list of layer sizes.
//
// ReLU activations are inserted between consecutive linear layers; the
// output layer has no activation.
//
// Example:
//
//	backend := cpu.New()
//	model := nn.NewMLP(backend, 100, 256, 256, 1)
func NewMLP[B tensor.Backend](backend B, layerSizes ...int) *Sequential[B] {
	return nn.NewMLP(backend, layerSizes...)
}

// Initialization functions

// Xavier initializes a tensor using Xavier/Glorot initialization.
//
// Example:
//
//	backend := cpu.New()
//	weights := nn.Xavier(784, 128, tensor.Shape{128, 784}, backend)
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// Zeros initializes a tensor with zeros (for biases).
//
// Example:
//
//	backend := cpu.New()
//	bias := nn.Zeros(tensor.Shape{128}, backend)
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Ones initializes a tensor with ones.
//
// Example:
//
//	backend := cpu.New()
//	weights := nn.Ones(tensor.Shape{128, 784}, backend)
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Ones(shape, backend)
}

// Randn initializes a tensor with random values from N(0, 1).
//
// Example:
//
//	backend := cpu.New()
//	weights := nn.Randn(tensor.Shape{128, 784}, backend)
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Randn(shape, backend)
}
