package checkpoint

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"unsafe"

	"github.com/arca-ml/arca/internal/tensor"
)

func TestMmapReaderBasic(t *testing.T) {
	weight := newRawFloat32(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})

	bias, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float64)
	if err != nil {
		t.Fatalf("Failed to create tensor: %v", err)
	}
	copy(bias.AsFloat64(), []float64{5, 6})

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.arca")
	named := map[string]*tensor.RawTensor{
		"weight": weight,
		"bias":   bias,
	}
	if err := SaveNamed(path, named); err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}

	reader, err := OpenMmap(path)
	if err != nil {
		t.Fatalf("Failed to create mmap reader: %v", err)
	}
	defer reader.Close()

	// Verify header
	header := reader.Header()
	if len(header.Tensors) != 2 {
		t.Errorf("Expected 2 tensors, got %d", len(header.Tensors))
	}
	if reader.Layout() != LayoutMap {
		t.Errorf("Expected map layout, got %s", reader.Layout())
	}
	if reader.Version() != FormatVersion {
		t.Errorf("Expected version %d, got %d", FormatVersion, reader.Version())
	}

	// Verify tensor info
	weightInfo, err := reader.TensorInfo("weight")
	if err != nil {
		t.Fatalf("Failed to get weight info: %v", err)
	}
	if weightInfo.DType != DTypeFloat32 {
		t.Errorf("Expected dtype float32, got %s", weightInfo.DType)
	}
	if !reflect.DeepEqual(weightInfo.Shape, []int{2, 2}) {
		t.Errorf("Expected shape [2, 2], got %v", weightInfo.Shape)
	}

	// Read tensor data
	weightData, err := reader.TensorData("weight")
	if err != nil {
		t.Fatalf("Failed to read weight data: %v", err)
	}
	if !bytes.Equal(weightData, weight.Data()) {
		t.Errorf("Weight data mismatch")
	}

	// Load as a standalone tensor
	loadedWeight, err := reader.LoadTensor("weight")
	if err != nil {
		t.Fatalf("Failed to load weight: %v", err)
	}
	if !float32Equal(loadedWeight.AsFloat32(), []float32{1, 2, 3, 4}) {
		t.Errorf("Loaded weight data mismatch:\nExpected: [1 2 3 4]\nGot: %v", loadedWeight.AsFloat32())
	}

	// Full snapshot
	snap, err := reader.Snapshot()
	if err != nil {
		t.Fatalf("Failed to read snapshot: %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("Expected 2 tensors in snapshot, got %d", snap.Len())
	}
	if got := snap.Get("bias"); got == nil || got.AsFloat64()[1] != 6 {
		t.Errorf("Snapshot bias mismatch: %v", got)
	}
}

func TestMmapReaderZeroCopy(t *testing.T) {
	raw := newRawFloat32(t, tensor.Shape{4}, []float32{1, 2, 3, 4})

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.arca")
	if err := SaveNamed(path, map[string]*tensor.RawTensor{"data": raw}); err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}

	reader, err := OpenMmap(path)
	if err != nil {
		t.Fatalf("Failed to create mmap reader: %v", err)
	}
	defer reader.Close()

	tensorData, err := reader.TensorData("data")
	if err != nil {
		t.Fatalf("Failed to get tensor data: %v", err)
	}

	// Verify it's within mmap bounds (address check)
	mmapStart := uintptr(unsafe.Pointer(&reader.data[0]))
	mmapEnd := mmapStart + uintptr(len(reader.data))
	dataStart := uintptr(unsafe.Pointer(&tensorData[0]))

	if dataStart < mmapStart || dataStart >= mmapEnd {
		t.Errorf("TensorData returned data outside mmap region:\nMmap: [%x, %x)\nData: %x",
			mmapStart, mmapEnd, dataStart)
	}

	// Data section starts 64-byte aligned, so the view is aligned too.
	if (dataStart-mmapStart)%HeaderAlignment != 0 {
		t.Errorf("Expected %d-byte aligned tensor view, offset %d", HeaderAlignment, dataStart-mmapStart)
	}

	// TensorDataCopy returns a buffer outside the mapping
	copiedData, err := reader.TensorDataCopy("data")
	if err != nil {
		t.Fatalf("Failed to copy tensor data: %v", err)
	}

	copiedStart := uintptr(unsafe.Pointer(&copiedData[0]))
	if copiedStart >= mmapStart && copiedStart < mmapEnd {
		t.Errorf("TensorDataCopy returned data inside mmap region (should be a copy)")
	}

	if !bytes.Equal(tensorData, copiedData) {
		t.Errorf("Copied data doesn't match original")
	}

	// LoadTensor copies too; mutating it must not reach the mapping.
	loaded, err := reader.LoadTensor("data")
	if err != nil {
		t.Fatalf("Failed to load tensor: %v", err)
	}
	loaded.AsFloat32()[0] = 99

	fresh, err := reader.TensorData("data")
	if err != nil {
		t.Fatalf("Failed to re-read tensor data: %v", err)
	}
	if !bytes.Equal(fresh, raw.Data()) {
		t.Error("Mutating a loaded tensor changed the mapped file data")
	}
}

// TestMmapReaderVerifyChecksum covers the deferred checksum contract:
// open succeeds on a corrupt file, the explicit verify catches it.
func TestMmapReaderVerifyChecksum(t *testing.T) {
	raw := newRawFloat32(t, tensor.Shape{4}, []float32{1, 2, 3, 4})

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.arca")
	if err := SaveNamed(path, map[string]*tensor.RawTensor{"data": raw}); err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}

	reader, err := OpenMmap(path)
	if err != nil {
		t.Fatalf("Failed to create mmap reader: %v", err)
	}
	if err := reader.VerifyChecksum(); err != nil {
		t.Errorf("Expected checksum to verify on intact file, got: %v", err)
	}
	reader.Close()

	// Corrupt the last data byte
	file, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		t.Fatalf("Failed to open file for corruption: %v", err)
	}
	info, err := file.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if _, err := file.Seek(info.Size()-1, 0); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if _, err := file.Write([]byte{0xFF}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	file.Close()

	reader, err = OpenMmap(path)
	if err != nil {
		t.Fatalf("Open should succeed without checksum validation, got: %v", err)
	}
	defer reader.Close()

	if err := reader.VerifyChecksum(); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Expected ErrChecksumMismatch, got: %v", err)
	}
}

func TestMmapReaderNotFound(t *testing.T) {
	raw := newRawFloat32(t, tensor.Shape{1}, []float32{1})

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.arca")
	if err := SaveNamed(path, map[string]*tensor.RawTensor{"existing": raw}); err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}

	reader, err := OpenMmap(path)
	if err != nil {
		t.Fatalf("Failed to create mmap reader: %v", err)
	}
	defer reader.Close()

	if _, err := reader.TensorInfo("nonexistent"); err == nil {
		t.Error("Expected error for non-existent tensor, got nil")
	}
	if _, err := reader.TensorData("nonexistent"); err == nil {
		t.Error("Expected error for non-existent tensor data, got nil")
	}
}

func TestMmapReaderClosed(t *testing.T) {
	raw := newRawFloat32(t, tensor.Shape{1}, []float32{1})

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.arca")
	if err := SaveNamed(path, map[string]*tensor.RawTensor{"data": raw}); err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}

	reader, err := OpenMmap(path)
	if err != nil {
		t.Fatalf("Failed to create mmap reader: %v", err)
	}
	reader.Close()

	if _, err := reader.TensorData("data"); err == nil {
		t.Error("Expected error when accessing data from closed reader")
	}
	if _, err := reader.LoadTensor("data"); err == nil {
		t.Error("Expected error when loading tensor from closed reader")
	}
	if err := reader.VerifyChecksum(); err == nil {
		t.Error("Expected error when verifying checksum on closed reader")
	}

	// Close again should be safe
	if err := reader.Close(); err != nil {
		t.Errorf("Second close should not error, got: %v", err)
	}
}

func TestMmapReaderInvalidFile(t *testing.T) {
	tests := []struct {
		name     string
		contents []byte
	}{
		{
			name:     "empty file",
			contents: []byte{},
		},
		{
			name:     "too small",
			contents: []byte("ARCA"),
		},
		{
			name:     "invalid magic",
			contents: bytes.Repeat([]byte{'X'}, FixedHeaderSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, "invalid.arca")

			if err := os.WriteFile(path, tt.contents, 0o600); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			reader, err := OpenMmap(path)
			if reader != nil {
				defer reader.Close()
			}
			if err == nil {
				t.Error("Expected error for invalid file, got nil")
			}
		})
	}
}

// TestMmapReaderListLayout checks that sequence order survives mmap loading.
func TestMmapReaderListLayout(t *testing.T) {
	arrays := []*tensor.RawTensor{
		newRawFloat32(t, tensor.Shape{1}, []float32{10}),
		newRawFloat32(t, tensor.Shape{1}, []float32{20}),
		newRawFloat32(t, tensor.Shape{1}, []float32{30}),
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "list.arca")
	if err := Save(path, arrays); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reader, err := OpenMmap(path)
	if err != nil {
		t.Fatalf("Failed to create mmap reader: %v", err)
	}
	defer reader.Close()

	if reader.Layout() != LayoutList {
		t.Errorf("Expected list layout, got %s", reader.Layout())
	}
	if reader.Flags()&FlagListLayout == 0 {
		t.Error("Expected FlagListLayout to be set")
	}

	snap, err := reader.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	for i, got := range snap.Arrays() {
		want := float32((i + 1) * 10)
		if got.AsFloat32()[0] != want {
			t.Errorf("Array %d: expected %v, got %v", i, want, got.AsFloat32()[0])
		}
	}
}

// TestMmapReaderEmptySnapshot verifies a zero-tensor file maps cleanly.
func TestMmapReaderEmptySnapshot(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty.arca")
	if err := Save(path, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reader, err := OpenMmap(path)
	if err != nil {
		t.Fatalf("Failed to create mmap reader: %v", err)
	}
	defer reader.Close()

	if len(reader.TensorNames()) != 0 {
		t.Errorf("Expected no tensors, got %v", reader.TensorNames())
	}
	if err := reader.VerifyChecksum(); err != nil {
		t.Errorf("Empty data section should verify, got: %v", err)
	}

	snap, err := reader.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Len() != 0 {
		t.Errorf("Expected empty snapshot, got %d tensors", snap.Len())
	}
}

// createBenchSnapshot writes a single-tensor snapshot for benchmarking.
func createBenchSnapshot(b *testing.B, numElements int) string {
	b.Helper()

	raw, err := tensor.NewRaw(tensor.Shape{numElements}, tensor.Float32)
	if err != nil {
		b.Fatalf("Failed to create tensor: %v", err)
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = float32(i)
	}

	tmpDir := b.TempDir()
	path := filepath.Join(tmpDir, "bench.arca")
	if err := SaveNamed(path, map[string]*tensor.RawTensor{"large_tensor": raw}); err != nil {
		b.Fatalf("SaveNamed failed: %v", err)
	}
	return path
}

// BenchmarkMmapVsRegularSmall benchmarks small file loading (1MB).
func BenchmarkMmapVsRegularSmall(b *testing.B) {
	benchmarkMmapVsRegular(b, 1024*256) // 256K elements = 1MB float32
}

// BenchmarkMmapVsRegularMedium benchmarks medium file loading (8MB).
func BenchmarkMmapVsRegularMedium(b *testing.B) {
	if testing.Short() {
		b.Skip("Skipping medium file benchmark in short mode")
	}
	benchmarkMmapVsRegular(b, 1024*1024*2) // 2M elements = 8MB float32
}

func benchmarkMmapVsRegular(b *testing.B, numElements int) {
	path := createBenchSnapshot(b, numElements)

	b.Run("Regular", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			reader, err := Open(path)
			if err != nil {
				b.Fatalf("Failed to create reader: %v", err)
			}
			if _, err := reader.LoadTensor("large_tensor"); err != nil {
				b.Fatalf("Failed to load tensor: %v", err)
			}
			reader.Close()
		}
	})

	b.Run("Mmap", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			reader, err := OpenMmap(path)
			if err != nil {
				b.Fatalf("Failed to create reader: %v", err)
			}
			if _, err := reader.LoadTensor("large_tensor"); err != nil {
				b.Fatalf("Failed to load tensor: %v", err)
			}
			reader.Close()
		}
	})

	b.Run("MmapZeroCopy", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			reader, err := OpenMmap(path)
			if err != nil {
				b.Fatalf("Failed to create reader: %v", err)
			}
			if _, err := reader.TensorData("large_tensor"); err != nil {
				b.Fatalf("Failed to get tensor data: %v", err)
			}
			reader.Close()
		}
	})
}
