// Copyright 2025 The Arca Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear
//   - Activations: ReLU, Sigmoid, Tanh, Softmax
//   - Utilities: Sequential, Module interface, Parameter, NewMLP
//   - Initialization: Xavier, Zeros, Ones, Randn
//   - Checkpointing: Save, Load, SaveCheckpoint, LoadCheckpoint
//
// # Basic Usage
//
//	import (
//	    "github.com/arca-ml/arca/nn"
//	    "github.com/arca-ml/arca/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // Build a simple MLP
//	    model := nn.NewSequential(
//	        nn.NewLinear(784, 128, backend),
//	        nn.NewReLU[*cpu.Backend](),
//	        nn.NewLinear(128, 10, backend),
//	    )
//
//	    // Forward pass
//	    output := model.Forward(input)
//	}
//
// # Layers
//
// Linear: Fully connected layer with Xavier initialization
//
//	layer := nn.NewLinear(inFeatures, outFeatures, backend)
//
// # Activations
//
// Common activation functions:
//
//	relu := nn.NewReLU[B]()
//	sigmoid := nn.NewSigmoid[B]()
//	tanh := nn.NewTanh[B]()
//	softmax := nn.NewSoftmax[B](-1)
//
// # Sequential Models
//
// Build models by composing layers:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 256, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(256, 128, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(128, 10, backend),
//	)
//
// or use the MLP shorthand, which inserts ReLU between hidden layers:
//
//	model := nn.NewMLP(backend, 784, 256, 128, 10)
//
// # Parameter Management
//
// Access model parameters for optimization:
//
//	params := model.Parameters()
//	for _, param := range params {
//	    fmt.Println(param.Name(), param.Tensor().Shape())
//	}
//
// # Saving and Loading
//
// Persist model parameters to .arca files:
//
//	err := nn.Save("model.arca", model)
//	err = nn.Load("model.arca", model)
//
// Full training checkpoints include optimizer state and progress:
//
//	err := nn.SaveCheckpoint("ckpt.arca", model, optimizer, epoch, step, loss)
//	ckpt, err := nn.LoadCheckpoint("ckpt.arca", model, optimizer)
package nn
