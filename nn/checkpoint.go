// Copyright 2025 The Arca Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/arca-ml/arca/internal/nn"
	"github.com/arca-ml/arca/internal/tensor"
)

// Checkpoint represents a complete training state snapshot.
//
// A checkpoint bundles model parameters, optimizer state, and training
// progress (epoch, step, loss) into a single .arca file, so training
// can resume exactly where it left off.
type Checkpoint[B tensor.Backend] = nn.Checkpoint[B]

// OptimizerState represents an optimizer that can save/load its state.
//
// Optimizers from the optim package implement this interface.
type OptimizerState = nn.OptimizerState

// Save writes a model's parameters to an .arca file.
//
// Only parameters are stored. Use SaveCheckpoint for full training
// checkpoints that include optimizer state.
//
// Example:
//
//	backend := cpu.New()
//	model := nn.NewMLP(backend, 100, 256, 256, 1)
//	err := nn.Save("model.arca", model)
func Save[B tensor.Backend](path string, model Module[B]) error {
	return nn.Save(path, model)
}

// Load restores a model's parameters in place from a file written by Save.
//
// The model must have the same architecture that produced the file. On
// any mismatch the model is left unmodified.
//
// Example:
//
//	backend := cpu.New()
//	model := nn.NewMLP(backend, 100, 256, 256, 1)
//	err := nn.Load("model.arca", model)
func Load[B tensor.Backend](path string, model Module[B]) error {
	return nn.Load(path, model)
}

// SaveCheckpoint saves a full training checkpoint in one call.
//
// Example:
//
//	err := nn.SaveCheckpoint("ckpt.arca", model, optimizer, epoch, step, loss)
func SaveCheckpoint[B tensor.Backend](path string, model Module[B], optimizer OptimizerState, epoch int, step int64, loss float64) error {
	return nn.SaveCheckpoint(path, model, optimizer, epoch, step, loss)
}

// LoadCheckpoint restores a training checkpoint from an .arca file.
//
// The model's parameters are loaded in place, and the optimizer's state
// is restored when optimizer is non-nil. Returns the checkpoint with
// training progress and metadata from the file header.
//
// Example:
//
//	ckpt, err := nn.LoadCheckpoint("ckpt.arca", model, optimizer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	startEpoch := ckpt.Epoch + 1
func LoadCheckpoint[B tensor.Backend](path string, model Module[B], optimizer OptimizerState) (*Checkpoint[B], error) {
	return nn.LoadCheckpoint(path, model, optimizer)
}
