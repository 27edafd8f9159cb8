package checkpoint

import (
	"time"

	"github.com/arca-ml/arca/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "ARCA"
	FormatVersion   = 1
	HeaderAlignment = 64   // Tensor data aligned to 64 bytes for mmap and cache friendliness
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeInt64   = "int64"
	DTypeUint8   = "uint8"
	DTypeBool    = "bool"
)

// Flags for the .arca format.
const (
	FlagHasOptimizer uint32 = 1 << 0 // bit 0: training checkpoint state included
	FlagHasMetadata  uint32 = 1 << 1 // bit 1: custom metadata included
	FlagListLayout   uint32 = 1 << 2 // bit 2: arrays saved as an ordered sequence
)

// Layout describes how arrays were organized when the snapshot was saved.
type Layout string

// Snapshot layouts.
const (
	LayoutList Layout = "list" // ordered sequence, names are indices "0", "1", ...
	LayoutMap  Layout = "map"  // named arrays
)

// Header represents the JSON header in an .arca file.
type Header struct {
	FormatVersion int               `json:"format_version"`       // Version of the .arca format
	ArcaVersion   string            `json:"arca_version"`         // Version of Arca that created this file
	CreatedAt     time.Time         `json:"created_at"`           // When the file was created
	SnapshotID    string            `json:"snapshot_id"`          // Unique ID for this snapshot
	Layout        Layout            `json:"layout"`               // "list" or "map"
	Tensors       []TensorMeta      `json:"tensors"`              // Tensor metadata in write order
	Metadata      map[string]string `json:"metadata"`             // Custom metadata
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"` // Training state (optional)
}

// CheckpointMeta carries training state for model checkpoints.
type CheckpointMeta struct {
	Epoch           int            `json:"epoch"`                      // Training epoch number
	Step            int64          `json:"step"`                       // Training step number
	Loss            float64        `json:"loss"`                       // Loss value at checkpoint
	ModelType       string         `json:"model_type,omitempty"`       // Model type (e.g. "MLP", "Sequential")
	OptimizerType   string         `json:"optimizer_type,omitempty"`   // Optimizer type ("SGD", "Adam", ...)
	OptimizerConfig map[string]any `json:"optimizer_config,omitempty"` // Optimizer hyperparameters
}

// TensorMeta describes one tensor in the .arca file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name ("layer.0.weight", or "0" for list layout)
	DType  string `json:"dtype"`  // Data type (e.g. "float32")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section, 64-byte aligned
	Size   int64  `json:"size"`   // Size in bytes
}

// align64 rounds n up to the next multiple of HeaderAlignment.
func align64(n int64) int64 {
	return (n + HeaderAlignment - 1) / HeaderAlignment * HeaderAlignment
}

// dtypeToString converts tensor.DataType to its serialized name.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	case tensor.Int64:
		return DTypeInt64
	case tensor.Uint8:
		return DTypeUint8
	case tensor.Bool:
		return DTypeBool
	default:
		return "unknown"
	}
}

// stringToDtype converts a serialized name back to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeInt64:
		return tensor.Int64, true
	case DTypeUint8:
		return tensor.Uint8, true
	case DTypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}
