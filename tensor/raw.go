// Copyright 2025 The Arca Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/arca-ml/arca/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Raw byte access via Data() for serialization
//   - Reference counting for efficient memory management via Clone()
//
// Most users should use the high-level Tensor[T, B] type instead.
// The checkpoint package works on RawTensor directly: Data() is the
// buffer that gets written to .arca files, and CopyFrom() is how
// loaded buffers land back in a model's parameters.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := raw.AsFloat32()  // Type-safe access
//	clone := raw.Clone()     // Shares buffer via reference counting
type RawTensor = tensor.RawTensor
