package checkpoint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/arca-ml/arca/internal/tensor"
)

const arcaVersion = "0.1.0" // Current Arca version

// SaveOptions carries optional header fields for a snapshot.
type SaveOptions struct {
	Metadata   map[string]string // Custom key-value metadata
	Checkpoint *CheckpointMeta   // Training state for model checkpoints
}

// tensorEntry pairs a serialized name with its tensor, in write order.
type tensorEntry struct {
	name string
	raw  *tensor.RawTensor
}

// Save writes an ordered sequence of arrays to path in list layout.
// The parent directory is created if it does not exist, and the file
// appears atomically: either the complete snapshot or nothing.
func Save(path string, arrays []*tensor.RawTensor) error {
	return SaveWithOptions(path, arrays, SaveOptions{})
}

// SaveWithOptions is Save with custom metadata and checkpoint state.
func SaveWithOptions(path string, arrays []*tensor.RawTensor, opts SaveOptions) error {
	entries := make([]tensorEntry, len(arrays))
	for i, raw := range arrays {
		if raw == nil {
			return fmt.Errorf("array %d is nil", i)
		}
		entries[i] = tensorEntry{name: strconv.Itoa(i), raw: raw}
	}
	return writeSnapshotFile(path, entries, LayoutList, opts)
}

// SaveNamed writes a set of named arrays to path in map layout.
// Arrays are stored in sorted name order so identical inputs produce
// identical files (modulo timestamp and snapshot ID).
func SaveNamed(path string, named map[string]*tensor.RawTensor) error {
	return SaveNamedWithOptions(path, named, SaveOptions{})
}

// SaveNamedWithOptions is SaveNamed with custom metadata and checkpoint state.
func SaveNamedWithOptions(path string, named map[string]*tensor.RawTensor, opts SaveOptions) error {
	entries, err := sortedEntries(named)
	if err != nil {
		return err
	}
	return writeSnapshotFile(path, entries, LayoutMap, opts)
}

func sortedEntries(named map[string]*tensor.RawTensor) ([]tensorEntry, error) {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]tensorEntry, 0, len(named))
	for _, name := range names {
		raw := named[name]
		if raw == nil {
			return nil, fmt.Errorf("tensor %q is nil", name)
		}
		entries = append(entries, tensorEntry{name: name, raw: raw})
	}
	return entries, nil
}

// buildHeader lays out tensor offsets and fills in the snapshot header.
// Each tensor starts at a 64-byte aligned offset within the data section.
func buildHeader(entries []tensorEntry, layout Layout, opts SaveOptions) (Header, error) {
	header := Header{
		FormatVersion: FormatVersion,
		ArcaVersion:   arcaVersion,
		CreatedAt:     time.Now().UTC(),
		SnapshotID:    uuid.NewString(),
		Layout:        layout,
		Tensors:       make([]TensorMeta, 0, len(entries)),
		Metadata:      opts.Metadata,
		Checkpoint:    opts.Checkpoint,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	var offset int64
	for _, e := range entries {
		if err := ValidateTensorName(e.name); err != nil {
			return Header{}, err
		}

		size := int64(e.raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   e.name,
			DType:  dtypeToString(e.raw.DType()),
			Shape:  []int(e.raw.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset = align64(offset + size)
	}

	return header, nil
}

// dataSectionSize returns the total data section size for a laid-out header.
// Inter-tensor alignment padding counts, trailing padding does not.
func dataSectionSize(tensors []TensorMeta) int64 {
	if len(tensors) == 0 {
		return 0
	}
	last := tensors[len(tensors)-1]
	return last.Offset + last.Size
}

// writeSnapshotFile writes a complete snapshot atomically.
//
// The data section is streamed through a SHA-256 hash as it is written,
// then the checksum is patched into the fixed header. This avoids
// buffering all tensor data in memory. The temp file is renamed into
// place only after a successful sync, so a crash mid-save never leaves
// a partial file at the target path.
func writeSnapshotFile(path string, entries []tensorEntry, layout Layout, opts SaveOptions) error {
	header, err := buildHeader(entries, layout, opts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Temp file in the target directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".arca-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeSnapshotBody(tmp, &header, entries); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// writeSnapshotBody writes the fixed header, JSON header, padding and tensor
// data to f, then seeks back and patches the data checksum.
func writeSnapshotBody(f *os.File, header *Header, entries []tensorEntry) error {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	headerSize := uint64(len(headerJSON))
	dataSize := dataSectionSize(header.Tensors)

	// Fixed header with a zeroed checksum placeholder.
	fixed := encodeFixedHeader(header, headerSize, uint64(dataSize), [32]byte{})
	if _, err := f.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}

	if _, err := f.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	// Pad so the data section starts on a 64-byte boundary.
	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	pos := int64(FixedHeaderSize) + int64(headerSize)
	if padding := align64(pos) - pos; padding > 0 {
		if _, err := f.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	// Stream tensor data (including inter-tensor alignment padding)
	// through the hash so the checksum never needs a second pass.
	hash := sha256.New()
	mw := io.MultiWriter(f, hash)

	var written int64
	for i, e := range entries {
		meta := header.Tensors[i]
		if written < meta.Offset {
			if _, err := mw.Write(make([]byte, meta.Offset-written)); err != nil {
				return fmt.Errorf("failed to write alignment padding: %w", err)
			}
			written = meta.Offset
		}
		if _, err := mw.Write(e.raw.Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", meta.Name, err)
		}
		written += meta.Size
	}

	var checksum [32]byte
	hash.Sum(checksum[:0])

	if _, err := f.Seek(ChecksumOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to checksum: %w", err)
	}
	if _, err := f.Write(checksum[:]); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}

	return nil
}

// encodeFixedHeader builds the 64-byte fixed header.
func encodeFixedHeader(header *Header, headerSize, dataSize uint64, checksum [32]byte) []byte {
	fixed := make([]byte, FixedHeaderSize)

	// 0x00-0x03: Magic bytes "ARCA"
	copy(fixed[0:4], MagicBytes)

	// 0x04-0x07: Version
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))

	// 0x08-0x0B: Flags
	flags := uint32(0)
	if header.Checkpoint != nil {
		flags |= FlagHasOptimizer
	}
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.Layout == LayoutList {
		flags |= FlagListLayout
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)

	// 0x0C-0x0F: Reserved (zero)

	// 0x10-0x17: Header size
	binary.LittleEndian.PutUint64(fixed[16:24], headerSize)

	// 0x18-0x1F: Data size
	binary.LittleEndian.PutUint64(fixed[24:32], dataSize)

	// 0x20-0x3F: SHA-256 checksum of the data section
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	return fixed
}

// WriteTo writes a map-layout snapshot to an arbitrary io.Writer.
// Useful for buffers and network connections. Unlike file saves, the
// data section is buffered in memory first since the checksum must be
// written before the data on a non-seekable writer.
func WriteTo(w io.Writer, named map[string]*tensor.RawTensor, opts SaveOptions) error {
	entries, err := sortedEntries(named)
	if err != nil {
		return err
	}

	header, err := buildHeader(entries, LayoutMap, opts)
	if err != nil {
		return err
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	headerSize := uint64(len(headerJSON))
	dataSize := dataSectionSize(header.Tensors)

	var buf bytes.Buffer
	buf.Grow(int(dataSize))
	for i, e := range entries {
		meta := header.Tensors[i]
		if int64(buf.Len()) < meta.Offset {
			buf.Write(make([]byte, meta.Offset-int64(buf.Len())))
		}
		buf.Write(e.raw.Data())
	}

	checksum := ComputeChecksum(buf.Bytes())

	fixed := encodeFixedHeader(&header, headerSize, uint64(dataSize), checksum)
	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	pos := int64(FixedHeaderSize) + int64(headerSize)
	if padding := align64(pos) - pos; padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return nil
}
