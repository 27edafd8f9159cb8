// Copyright 2025 The Arca Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import (
//	    "github.com/arca-ml/arca/optim"
//	    "github.com/arca-ml/arca/nn"
//	    "github.com/arca-ml/arca/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model := nn.NewLinear(784, 10, backend)
//
//	    // Create optimizer
//	    optimizer := optim.NewAdam(
//	        model.Parameters(),
//	        optim.AdamConfig{
//	            LR:    0.001,
//	            Betas: [2]float32{0.9, 0.999},
//	        },
//	        backend,
//	    )
//
//	    // Training loop
//	    for epoch := 0; epoch < 10; epoch++ {
//	        // 1. Zero gradients
//	        optimizer.ZeroGrad()
//
//	        // 2. Compute gradients and attach them to parameters
//	        for _, param := range model.Parameters() {
//	            param.SetGrad(computeGrad(param))
//	        }
//
//	        // 3. Update parameters
//	        optimizer.Step()
//	    }
//	}
//
// # Optimizers
//
// SGD (Stochastic Gradient Descent):
//
//	optimizer := optim.NewSGD(
//	    model.Parameters(),
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	    backend,
//	)
//
// Adam (Adaptive Moment Estimation):
//
//	optimizer := optim.NewAdam(
//	    model.Parameters(),
//	    optim.AdamConfig{
//	        LR:    0.001,
//	        Betas: [2]float32{0.9, 0.999},
//	        Eps:   1e-8,
//	    },
//	    backend,
//	)
//
// # Checkpointing
//
// Both optimizers implement nn.OptimizerState, so their internal state
// (momentum buffers, Adam moments, step count) rides along in training
// checkpoints:
//
//	err := nn.SaveCheckpoint("ckpt.arca", model, optimizer, epoch, step, loss)
//	ckpt, err := nn.LoadCheckpoint("ckpt.arca", model, optimizer)
package optim
