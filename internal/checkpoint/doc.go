// Package checkpoint implements the native .arca snapshot format for saving
// and restoring dense arrays and model parameters.
//
//	Format Structure:
//	  [4 bytes:  Magic "ARCA"]
//	  [4 bytes:  Version (uint32 LE)]
//	  [4 bytes:  Flags (uint32 LE)]
//	  [4 bytes:  Reserved]
//	  [8 bytes:  Header Size (uint64 LE)]
//	  [8 bytes:  Data Size (uint64 LE)]
//	  [32 bytes: SHA-256 checksum of the data section]
//	  [Header: JSON metadata]
//	  [Padding to 64-byte boundary]
//	  [Tensor data: raw little-endian bytes, each tensor 64-byte aligned]
//
// A snapshot stores either an ordered sequence of arrays (list layout) or a
// set of named arrays (map layout). The layout is recorded in the header so
// readers can reconstruct exactly what was saved.
//
// Files are written atomically: data goes to a temporary file in the target
// directory which is renamed into place only after the checksum is patched
// in and the contents are synced. A crash mid-save never leaves a partial
// snapshot at the target path.
//
// Example usage:
//
//	// Save two arrays as an ordered pair
//	if err := checkpoint.Save("run/pair.arca", []*tensor.RawTensor{a, b}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Restore them
//	snap, err := checkpoint.Load("run/pair.arca")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	arrays := snap.Arrays()
package checkpoint
