package nn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arca-ml/arca/internal/checkpoint"
	"github.com/arca-ml/arca/internal/tensor"
)

// optimizerPrefix namespaces optimizer state next to model parameters in
// a checkpoint file.
const optimizerPrefix = "optimizer."

// OptimizerState represents an optimizer that can save/load its state.
//
// This interface is used by checkpoints to serialize optimizer state
// without creating import cycles. Optimizers from the optim package
// implement this interface.
type OptimizerState interface {
	// StateDict returns the optimizer state for serialization.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads optimizer state from serialization.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error

	// GetLR returns the current learning rate.
	GetLR() float32

	// Type returns the optimizer's type name ("SGD", "Adam", ...).
	Type() string

	// Config returns the optimizer's hyperparameters for the
	// checkpoint header.
	Config() map[string]any
}

// Checkpoint represents a complete training state snapshot.
//
// A checkpoint includes:
//   - Model parameters (weights and biases)
//   - Optimizer state (momentum buffers, Adam moments, etc.)
//   - Training progress (epoch, step, loss)
//   - Custom metadata
//
// Checkpoints let training resume from a specific point, which matters
// for long-running jobs that might be interrupted and for comparing
// runs mid-flight.
//
// Example:
//
//	ckpt := &nn.Checkpoint[*cpu.CPUBackend]{
//	    Model:     model,
//	    Optimizer: optimizer,
//	    Epoch:     10,
//	    Step:      5000,
//	    Loss:      0.123,
//	    Metadata:  map[string]string{"dataset": "mnist"},
//	}
//	err := ckpt.Save("checkpoint_epoch_10.arca")
//
// To resume training:
//
//	ckpt, err := nn.LoadCheckpoint("checkpoint_epoch_10.arca", model, optimizer)
//	startEpoch := ckpt.Epoch + 1
//
// Type parameter B must satisfy the tensor.Backend interface.
type Checkpoint[B tensor.Backend] struct {
	Model     Module[B]         // The neural network model
	Optimizer OptimizerState    // The optimizer with its state, may be nil
	Epoch     int               // Training epoch number
	Step      int64             // Training step number
	Loss      float64           // Loss value at this checkpoint
	Metadata  map[string]string // Additional metadata for the file header
	CreatedAt time.Time         // When the checkpoint was created
}

// Save writes the checkpoint to an .arca file.
//
// Model parameters are stored under their state dict names and optimizer
// state under an "optimizer." prefix, so both round-trip through a single
// file. Training progress and optimizer hyperparameters go into the file
// header. The file can be loaded with LoadCheckpoint to resume training.
func (c *Checkpoint[B]) Save(path string) error {
	if c.Model == nil {
		return errors.New("checkpoint has no model")
	}

	combined := make(map[string]*tensor.RawTensor)
	for name, raw := range c.Model.StateDict() {
		combined[name] = raw
	}

	meta := &checkpoint.CheckpointMeta{
		Epoch:     c.Epoch,
		Step:      c.Step,
		Loss:      c.Loss,
		ModelType: modelTypeName(c.Model),
	}

	if c.Optimizer != nil {
		for name, raw := range c.Optimizer.StateDict() {
			combined[optimizerPrefix+name] = raw
		}
		meta.OptimizerType = c.Optimizer.Type()
		meta.OptimizerConfig = c.Optimizer.Config()
	}

	opts := checkpoint.SaveOptions{
		Metadata:   c.Metadata,
		Checkpoint: meta,
	}
	if err := checkpoint.SaveNamedWithOptions(path, combined, opts); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// SaveCheckpoint saves a training checkpoint in one call.
//
// Equivalent to constructing a Checkpoint and calling Save.
func SaveCheckpoint[B tensor.Backend](path string, model Module[B], optimizer OptimizerState, epoch int, step int64, loss float64) error {
	ckpt := &Checkpoint[B]{
		Model:     model,
		Optimizer: optimizer,
		Epoch:     epoch,
		Step:      step,
		Loss:      loss,
		CreatedAt: time.Now().UTC(),
	}
	return ckpt.Save(path)
}

// LoadCheckpoint restores a training checkpoint from an .arca file.
//
// The model's parameters are loaded in place. If optimizer is non-nil and
// the file carries optimizer state, that state is restored too; passing a
// nil optimizer loads just the model from a full checkpoint. The file
// must have been written by Checkpoint.Save (files without checkpoint
// metadata are rejected, use Load for plain model files).
//
// Returns the populated Checkpoint with training progress and metadata
// from the file header.
func LoadCheckpoint[B tensor.Backend](path string, model Module[B], optimizer OptimizerState) (*Checkpoint[B], error) {
	snap, err := checkpoint.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	meta := snap.Checkpoint()
	if meta == nil {
		return nil, fmt.Errorf("%s is not a training checkpoint (no checkpoint metadata)", path)
	}

	modelState := make(map[string]*tensor.RawTensor)
	optimizerState := make(map[string]*tensor.RawTensor)
	for name, raw := range snap.Named() {
		if strings.HasPrefix(name, optimizerPrefix) {
			optimizerState[strings.TrimPrefix(name, optimizerPrefix)] = raw
		} else {
			modelState[name] = raw
		}
	}

	if err := model.LoadStateDict(modelState); err != nil {
		return nil, fmt.Errorf("failed to load model state: %w", err)
	}

	if optimizer != nil && len(optimizerState) > 0 {
		if err := optimizer.LoadStateDict(optimizerState); err != nil {
			return nil, fmt.Errorf("failed to load optimizer state: %w", err)
		}
	}

	return &Checkpoint[B]{
		Model:     model,
		Optimizer: optimizer,
		Epoch:     meta.Epoch,
		Step:      meta.Step,
		Loss:      meta.Loss,
		Metadata:  snap.Metadata(),
		CreatedAt: snap.Header().CreatedAt,
	}, nil
}

// Save writes only the model's parameters to an .arca file.
//
// The file uses map layout with the model's state dict names as keys.
// No optimizer state or training progress is stored, use Checkpoint.Save
// for full training checkpoints.
func Save[B tensor.Backend](path string, model Module[B]) error {
	if err := checkpoint.SaveNamed(path, model.StateDict()); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	return nil
}

// Load restores a model's parameters in place from a file written by Save.
//
// The model must have the same architecture that produced the file: the
// state dict key sets, shapes, and dtypes must all match, and a mismatch
// fails without modifying the model. Files written by Checkpoint.Save
// carry optimizer state and are rejected here, use LoadCheckpoint.
func Load[B tensor.Backend](path string, model Module[B]) error {
	snap, err := checkpoint.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	if err := model.LoadStateDict(snap.Named()); err != nil {
		return fmt.Errorf("failed to load model state: %w", err)
	}
	return nil
}

// modelTypeName reports a short type name for the checkpoint header.
func modelTypeName[B tensor.Backend](model Module[B]) string {
	switch model.(type) {
	case *Sequential[B]:
		return "Sequential"
	case *Linear[B]:
		return "Linear"
	default:
		return "Module"
	}
}
