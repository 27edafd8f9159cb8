// Copyright 2025 The Arca Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint implements the native .arca snapshot format for saving
// and restoring dense arrays and model parameters.
//
// # Overview
//
// An .arca file stores either an ordered sequence of arrays (list layout)
// or a set of named arrays (map layout), together with optional metadata
// and training checkpoint state. Files carry a SHA-256 checksum over the
// data section and are written atomically, so a crash mid-save never
// leaves a partial snapshot behind.
//
// # Basic Usage
//
//	import (
//	    "github.com/arca-ml/arca/checkpoint"
//	    "github.com/arca-ml/arca/tensor"
//	)
//
//	// Save two arrays as an ordered pair
//	err := checkpoint.Save("run/pair.arca", []*tensor.RawTensor{a, b})
//
//	// Restore them
//	snap, err := checkpoint.Load("run/pair.arca")
//	arrays := snap.Arrays()
//
// Named arrays use map layout:
//
//	err := checkpoint.SaveNamed("run/named.arca", map[string]*tensor.RawTensor{
//	    "weights": w,
//	    "bias":    b,
//	})
//	snap, err := checkpoint.Load("run/named.arca")
//	w := snap.Get("weights")
//
// # File Format
//
//	[4 bytes:  Magic "ARCA"]
//	[4 bytes:  Version (uint32 LE)]
//	[4 bytes:  Flags (uint32 LE)]
//	[4 bytes:  Reserved]
//	[8 bytes:  Header Size (uint64 LE)]
//	[8 bytes:  Data Size (uint64 LE)]
//	[32 bytes: SHA-256 checksum of the data section]
//	[Header: JSON metadata]
//	[Padding to 64-byte boundary]
//	[Tensor data: raw little-endian bytes, each tensor 64-byte aligned]
//
// # Random Access
//
// Open returns a Reader that parses the header eagerly and reads tensor
// data on demand, so a single tensor can be pulled out of a large file
// without loading the rest:
//
//	r, err := checkpoint.Open("model.arca")
//	defer r.Close()
//	raw, err := r.LoadTensor("0.weight")
//
// OpenMmap memory-maps the file instead, giving zero-copy access to
// tensor data:
//
//	m, err := checkpoint.OpenMmap("model.arca")
//	defer m.Close()
//	data, err := m.TensorData("0.weight") // valid until Close
//
// # Validation
//
// Files are checksummed and their headers validated on open. Strictness
// is configurable through ReaderOptions for trusted inputs:
//
//	snap, err := checkpoint.LoadWithOptions("model.arca", checkpoint.ReaderOptions{
//	    SkipChecksumValidation: true,
//	    ValidationLevel:        checkpoint.ValidationNone,
//	})
//
// # Interop
//
// ExportSafeTensors and ImportSafeTensors convert between .arca snapshots
// and the safetensors format used by the wider ML ecosystem.
package checkpoint
