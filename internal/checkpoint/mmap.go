package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/arca-ml/arca/internal/tensor"
)

// MmapReader provides memory-mapped access to .arca files.
// Only the header is parsed up front; tensor bytes are served straight
// from the OS page cache. Large snapshots open in constant time.
type MmapReader struct {
	file       *os.File
	data       []byte // mmap'd region (read-only)
	size       int64
	header     Header
	version    uint32
	flags      uint32
	dataOffset int64
	dataSize   int64
	checksum   [32]byte
	closed     bool
}

// OpenMmap creates a memory-mapped reader for an .arca file.
// The checksum is NOT verified on open; call VerifyChecksum to force a
// full read. Always Close the reader to unmap the file.
func OpenMmap(path string) (*MmapReader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for snapshot loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &MmapReader{
		file: file,
		data: data,
		size: stat.Size(),
	}

	if err := r.parseHeader(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	return r, nil
}

// parseHeader reads and validates the header from the mapped region.
func (r *MmapReader) parseHeader() error {
	if r.size < FixedHeaderSize {
		return fmt.Errorf("file too small: %d bytes (minimum %d bytes required)", r.size, FixedHeaderSize)
	}

	if string(r.data[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}

	r.version = binary.LittleEndian.Uint32(r.data[4:8])
	if r.version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, r.version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(r.data[8:12])

	headerSize := binary.LittleEndian.Uint64(r.data[16:24])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	dataSize := binary.LittleEndian.Uint64(r.data[24:32])
	if dataSize > uint64(1)<<62 {
		return fmt.Errorf("data size too large: %d", dataSize)
	}
	r.dataSize = int64(dataSize)

	copy(r.checksum[:], r.data[ChecksumOffset:ChecksumOffset+ChecksumSize])

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	headerEnd := int64(FixedHeaderSize) + int64(headerSize)
	if headerEnd > r.size {
		return fmt.Errorf("header extends beyond file: header_end=%d, file_size=%d", headerEnd, r.size)
	}

	if err := json.Unmarshal(r.data[FixedHeaderSize:headerEnd], &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = align64(headerEnd)
	if r.dataOffset+r.dataSize > r.size {
		return fmt.Errorf("%w: data section [%d-%d] exceeds file size %d",
			ErrOutOfBounds, r.dataOffset, r.dataOffset+r.dataSize, r.size)
	}

	if err := ValidateHeader(&r.header, r.dataSize, ValidationStrict); err != nil {
		return fmt.Errorf("header validation failed: %w", err)
	}

	return nil
}

// Close unmaps and closes the file.
func (r *MmapReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}

	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// Header returns the file header.
func (r *MmapReader) Header() Header {
	return r.header
}

// Layout returns how the arrays were organized at save time.
func (r *MmapReader) Layout() Layout {
	return r.header.Layout
}

// Version returns the format version.
func (r *MmapReader) Version() uint32 {
	return r.version
}

// Flags returns the flags bitfield.
func (r *MmapReader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 checksum of the data section.
func (r *MmapReader) Checksum() [32]byte {
	return r.checksum
}

// VerifyChecksum hashes the mapped data section against the stored checksum.
// This touches every page of the data section.
func (r *MmapReader) VerifyChecksum() error {
	if r.closed {
		return fmt.Errorf("reader is closed")
	}

	computed := ComputeChecksum(r.data[r.dataOffset : r.dataOffset+r.dataSize])
	return ValidateChecksum(computed, r.checksum)
}

// TensorNames returns all tensor names in write order.
func (r *MmapReader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// TensorInfo returns metadata about a specific tensor.
func (r *MmapReader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("tensor %q not found", name)
}

// TensorData returns a zero-copy view of tensor bytes.
// The slice is valid only while the reader is open, and the mapped
// memory is read-only: writing to it is undefined behavior. Use
// TensorDataCopy when the caller needs a mutable buffer.
func (r *MmapReader) TensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	start := r.dataOffset + meta.Offset
	end := start + meta.Size

	if end > r.size {
		return nil, fmt.Errorf("%w: tensor %q: offset %d + size %d > file_size %d",
			ErrOutOfBounds, name, start, meta.Size, r.size)
	}

	return r.data[start:end], nil
}

// TensorDataCopy returns a mutable copy of tensor bytes.
func (r *MmapReader) TensorDataCopy(name string) ([]byte, error) {
	data, err := r.TensorData(name)
	if err != nil {
		return nil, err
	}

	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// LoadTensor creates a RawTensor populated from the mapped data.
func (r *MmapReader) LoadTensor(name string) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	raw, err := newRawFromMeta(meta)
	if err != nil {
		return nil, err
	}

	data, err := r.TensorData(name)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data)

	return raw, nil
}

// Snapshot loads every tensor from the mapped file.
func (r *MmapReader) Snapshot() (*Snapshot, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	tensors := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	order := make([]string, 0, len(r.header.Tensors))

	for _, meta := range r.header.Tensors {
		raw, err := r.LoadTensor(meta.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		tensors[meta.Name] = raw
		order = append(order, meta.Name)
	}

	return newSnapshot(r.header, tensors, order), nil
}
