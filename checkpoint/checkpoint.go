// Copyright 2025 The Arca Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package checkpoint

import (
	"io"

	internalcheckpoint "github.com/arca-ml/arca/internal/checkpoint"
	"github.com/arca-ml/arca/internal/tensor"
)

// Format constants.
const (
	// MagicBytes identifies .arca files.
	MagicBytes = internalcheckpoint.MagicBytes
	// FormatVersion is the current .arca format version.
	FormatVersion = internalcheckpoint.FormatVersion
	// HeaderAlignment is the byte alignment of the data section and of
	// each tensor within it.
	HeaderAlignment = internalcheckpoint.HeaderAlignment
	// FixedHeaderSize is the size of the fixed binary header.
	FixedHeaderSize = internalcheckpoint.FixedHeaderSize
	// ChecksumSize is the size of the SHA-256 checksum.
	ChecksumSize = internalcheckpoint.ChecksumSize
)

// Flags for the .arca format.
const (
	FlagHasOptimizer = internalcheckpoint.FlagHasOptimizer // training checkpoint state included
	FlagHasMetadata  = internalcheckpoint.FlagHasMetadata  // custom metadata included
	FlagListLayout   = internalcheckpoint.FlagListLayout   // arrays saved as an ordered sequence
)

// Validation limits.
const (
	MaxHeaderSize    = internalcheckpoint.MaxHeaderSize
	MaxTensorCount   = internalcheckpoint.MaxTensorCount
	MaxTensorNameLen = internalcheckpoint.MaxTensorNameLen
	MaxMetadataSize  = internalcheckpoint.MaxMetadataSize
)

// Layout describes how arrays were organized when the snapshot was saved.
type Layout = internalcheckpoint.Layout

// Snapshot layouts.
const (
	LayoutList = internalcheckpoint.LayoutList // ordered sequence, names are indices "0", "1", ...
	LayoutMap  = internalcheckpoint.LayoutMap  // named arrays
)

// Header represents the JSON header in an .arca file.
type Header = internalcheckpoint.Header

// TensorMeta describes one tensor in an .arca file.
type TensorMeta = internalcheckpoint.TensorMeta

// CheckpointMeta carries training state for model checkpoints.
type CheckpointMeta = internalcheckpoint.CheckpointMeta

// SaveOptions configures how snapshots are written.
type SaveOptions = internalcheckpoint.SaveOptions

// Snapshot holds the arrays restored from an .arca file.
type Snapshot = internalcheckpoint.Snapshot

// Reader provides random access to tensors in an .arca file.
type Reader = internalcheckpoint.Reader

// ReaderOptions configures the behavior of Reader.
type ReaderOptions = internalcheckpoint.ReaderOptions

// MmapReader provides zero-copy access to tensors via memory mapping.
type MmapReader = internalcheckpoint.MmapReader

// ValidationLevel controls the strictness of validation.
type ValidationLevel = internalcheckpoint.ValidationLevel

// Validation levels.
const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict = internalcheckpoint.ValidationStrict
	// ValidationNormal performs basic validation checks only.
	ValidationNormal = internalcheckpoint.ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone = internalcheckpoint.ValidationNone
)

// ValidationError describes a validation failure with context about the
// offending tensor.
type ValidationError = internalcheckpoint.ValidationError

// Sentinel errors, matched with errors.Is.
var (
	ErrChecksumMismatch   = internalcheckpoint.ErrChecksumMismatch
	ErrOffsetOverlap      = internalcheckpoint.ErrOffsetOverlap
	ErrOutOfBounds        = internalcheckpoint.ErrOutOfBounds
	ErrNegativeOffset     = internalcheckpoint.ErrNegativeOffset
	ErrTooManyTensors     = internalcheckpoint.ErrTooManyTensors
	ErrTensorNameTooLong  = internalcheckpoint.ErrTensorNameTooLong
	ErrInvalidTensorName  = internalcheckpoint.ErrInvalidTensorName
	ErrHeaderTooLarge     = internalcheckpoint.ErrHeaderTooLarge
	ErrInvalidMagic       = internalcheckpoint.ErrInvalidMagic
	ErrUnsupportedVersion = internalcheckpoint.ErrUnsupportedVersion
)

// Saving

// Save writes an ordered sequence of arrays to an .arca file (list layout).
//
// Example:
//
//	err := checkpoint.Save("pair.arca", []*tensor.RawTensor{a, b})
func Save(path string, arrays []*tensor.RawTensor) error {
	return internalcheckpoint.Save(path, arrays)
}

// SaveWithOptions is Save with metadata and checkpoint state.
func SaveWithOptions(path string, arrays []*tensor.RawTensor, opts SaveOptions) error {
	return internalcheckpoint.SaveWithOptions(path, arrays, opts)
}

// SaveNamed writes named arrays to an .arca file (map layout).
//
// Example:
//
//	err := checkpoint.SaveNamed("named.arca", map[string]*tensor.RawTensor{
//	    "weights": w,
//	    "bias":    b,
//	})
func SaveNamed(path string, named map[string]*tensor.RawTensor) error {
	return internalcheckpoint.SaveNamed(path, named)
}

// SaveNamedWithOptions is SaveNamed with metadata and checkpoint state.
func SaveNamedWithOptions(path string, named map[string]*tensor.RawTensor, opts SaveOptions) error {
	return internalcheckpoint.SaveNamedWithOptions(path, named, opts)
}

// WriteTo streams a snapshot to an arbitrary writer instead of a file.
//
// Useful for writing snapshots over the network or into archives. Unlike
// Save, there is no atomic rename; the caller owns the destination.
func WriteTo(w io.Writer, named map[string]*tensor.RawTensor, opts SaveOptions) error {
	return internalcheckpoint.WriteTo(w, named, opts)
}

// Loading

// Load reads a complete snapshot from an .arca file.
//
// The layout recorded in the header determines whether the arrays come
// back as an ordered sequence (Snapshot.Arrays) or a named set
// (Snapshot.Named).
//
// Example:
//
//	snap, err := checkpoint.Load("pair.arca")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	arrays := snap.Arrays()
func Load(path string) (*Snapshot, error) {
	return internalcheckpoint.Load(path)
}

// LoadWithOptions is Load with custom validation options.
func LoadWithOptions(path string, opts ReaderOptions) (*Snapshot, error) {
	return internalcheckpoint.LoadWithOptions(path, opts)
}

// ReadFrom reads a complete snapshot from an arbitrary reader.
//
// The counterpart to WriteTo, for snapshots arriving over the network or
// from archives.
func ReadFrom(reader io.Reader) (*Snapshot, error) {
	return internalcheckpoint.ReadFrom(reader)
}

// Open opens an .arca file for random access with default options
// (strict validation).
//
// Example:
//
//	r, err := checkpoint.Open("model.arca")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	raw, err := r.LoadTensor("0.weight")
func Open(path string) (*Reader, error) {
	return internalcheckpoint.Open(path)
}

// OpenWithOptions opens an .arca file with custom options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	return internalcheckpoint.OpenWithOptions(path, opts)
}

// OpenMmap memory-maps an .arca file for zero-copy tensor access.
//
// Tensor data returned by MmapReader.TensorData points directly into the
// mapped region and is valid until Close.
func OpenMmap(path string) (*MmapReader, error) {
	return internalcheckpoint.OpenMmap(path)
}

// Interop

// ExportSafeTensors writes named arrays to a safetensors file.
func ExportSafeTensors(path string, named map[string]*tensor.RawTensor, metadata map[string]string) error {
	return internalcheckpoint.ExportSafeTensors(path, named, metadata)
}

// ImportSafeTensors reads a safetensors file into named arrays and
// returns them with the file's metadata.
func ImportSafeTensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	return internalcheckpoint.ImportSafeTensors(path)
}
