// Copyright 2025 The Arca Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package checkpoint_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arca-ml/arca/checkpoint"
	"github.com/arca-ml/arca/internal/tensor"
)

func newFilled(t *testing.T, shape tensor.Shape, value float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = value
	}
	return raw
}

// TestListRoundTrip verifies the public API round-trips an ordered pair.
func TestListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.arca")

	ones := newFilled(t, tensor.Shape{100, 100}, 1)
	zeros := newFilled(t, tensor.Shape{100, 100}, 0)

	if err := checkpoint.Save(path, []*tensor.RawTensor{ones, zeros}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := checkpoint.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if snap.Layout() != checkpoint.LayoutList {
		t.Errorf("Layout() = %v, want %v", snap.Layout(), checkpoint.LayoutList)
	}
	if snap.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", snap.Len())
	}

	arrays := snap.Arrays()
	if !arrays[0].Shape().Equal(tensor.Shape{100, 100}) {
		t.Errorf("arrays[0] shape = %v, want [100 100]", arrays[0].Shape())
	}
	if got := arrays[0].AsFloat32()[0]; got != 1 {
		t.Errorf("arrays[0][0] = %v, want 1", got)
	}
	if got := arrays[1].AsFloat32()[0]; got != 0 {
		t.Errorf("arrays[1][0] = %v, want 0", got)
	}
}

// TestNamedRoundTrip verifies the public API round-trips named arrays.
func TestNamedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.arca")

	named := map[string]*tensor.RawTensor{
		"ones":  newFilled(t, tensor.Shape{100, 100}, 1),
		"zeros": newFilled(t, tensor.Shape{100, 100}, 0),
	}
	if err := checkpoint.SaveNamed(path, named); err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}

	snap, err := checkpoint.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if snap.Layout() != checkpoint.LayoutMap {
		t.Errorf("Layout() = %v, want %v", snap.Layout(), checkpoint.LayoutMap)
	}
	if got := snap.Get("ones"); got == nil || got.AsFloat32()[0] != 1 {
		t.Error("Get(\"ones\") did not restore the ones array")
	}
	if got := snap.Get("zeros"); got == nil || got.AsFloat32()[0] != 0 {
		t.Error("Get(\"zeros\") did not restore the zeros array")
	}
	if got := snap.Get("missing"); got != nil {
		t.Error("Get(\"missing\") = non-nil, want nil")
	}
}

// TestReaderRandomAccess verifies Open reads single tensors on demand.
func TestReaderRandomAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.arca")

	named := map[string]*tensor.RawTensor{
		"a": newFilled(t, tensor.Shape{4}, 7),
		"b": newFilled(t, tensor.Shape{2, 2}, 9),
	}
	if err := checkpoint.SaveNamed(path, named); err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}

	r, err := checkpoint.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() {
		_ = r.Close()
	}()

	if r.Version() != checkpoint.FormatVersion {
		t.Errorf("Version() = %d, want %d", r.Version(), checkpoint.FormatVersion)
	}

	raw, err := r.LoadTensor("b")
	if err != nil {
		t.Fatalf("LoadTensor failed: %v", err)
	}
	if !raw.Shape().Equal(tensor.Shape{2, 2}) {
		t.Errorf("LoadTensor shape = %v, want [2 2]", raw.Shape())
	}
	if got := raw.AsFloat32()[0]; got != 9 {
		t.Errorf("LoadTensor data[0] = %v, want 9", got)
	}
}

// TestCorruptionDetected verifies the re-exported sentinel matches.
func TestCorruptionDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.arca")

	if err := checkpoint.Save(path, []*tensor.RawTensor{newFilled(t, tensor.Shape{8}, 3)}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Flip a byte in the data section (the file tail).
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err = checkpoint.Load(path)
	if !errors.Is(err, checkpoint.ErrChecksumMismatch) {
		t.Errorf("Load error = %v, want ErrChecksumMismatch", err)
	}
}
