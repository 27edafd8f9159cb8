package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arca-ml/arca/internal/tensor"
)

// Reader provides random access to tensors in an .arca file.
// The header is parsed eagerly; tensor data is read on demand.
type Reader struct {
	file       *os.File
	header     Header
	version    uint32
	flags      uint32
	dataOffset int64
	dataSize   int64
	checksum   [32]byte
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Open opens an .arca file with default options (strict validation).
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{
		ValidationLevel: ValidationStrict,
	})
}

// OpenWithOptions opens an .arca file with custom options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for snapshot loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{
		file: file,
		opts: opts,
	}

	if err := r.parseHeader(); err != nil {
		_ = file.Close() // Best effort close on error
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if err := ValidateHeader(&r.header, r.dataSize, opts.ValidationLevel); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !opts.SkipChecksumValidation {
		if err := r.verifyChecksum(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return r, nil
}

// parseHeader reads the fixed header and the JSON header.
func (r *Reader) parseHeader() error {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.file, fixed); err != nil {
		return fmt.Errorf("failed to read fixed header: %w", err)
	}

	if string(fixed[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}

	r.version = binary.LittleEndian.Uint32(fixed[4:8])
	if r.version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, r.version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(fixed[8:12])

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if dataSize > uint64(1)<<62 {
		return fmt.Errorf("data size too large: %d", dataSize)
	}
	r.dataSize = int64(dataSize)

	copy(r.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerBytes); err != nil {
		return fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	r.dataOffset = align64(int64(FixedHeaderSize) + int64(headerSize))

	// Cross-check the declared data size against the actual file.
	info, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if r.dataOffset+r.dataSize > info.Size() {
		return fmt.Errorf("%w: data section [%d-%d] exceeds file size %d",
			ErrOutOfBounds, r.dataOffset, r.dataOffset+r.dataSize, info.Size())
	}

	return nil
}

// verifyChecksum hashes the data section and compares against the header.
func (r *Reader) verifyChecksum() error {
	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data section: %w", err)
	}

	computed, err := ComputeChecksumReader(io.LimitReader(r.file, r.dataSize))
	if err != nil {
		return fmt.Errorf("failed to hash data section: %w", err)
	}

	return ValidateChecksum(computed, r.checksum)
}

// Header returns the parsed file header.
func (r *Reader) Header() Header {
	return r.header
}

// Layout returns how the arrays were organized at save time.
func (r *Reader) Layout() Layout {
	return r.header.Layout
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// Version returns the format version.
func (r *Reader) Version() uint32 {
	return r.version
}

// Flags returns the flags bitfield.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 checksum of the data section.
func (r *Reader) Checksum() [32]byte {
	return r.checksum
}

// TensorNames returns all tensor names in write order.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns metadata about a specific tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("tensor %q not found", name)
}

// ReadTensorData reads the raw bytes of a named tensor.
func (r *Reader) ReadTensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	if _, err := r.file.Seek(r.dataOffset+meta.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to tensor data: %w", err)
	}

	data := make([]byte, meta.Size)
	if _, err := io.ReadFull(r.file, data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	return data, nil
}

// LoadTensor loads a single named tensor from the file.
func (r *Reader) LoadTensor(name string) (*tensor.RawTensor, error) {
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

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data)

	return raw, nil
}

// Snapshot loads every tensor and returns the complete snapshot.
func (r *Reader) Snapshot() (*Snapshot, error) {
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

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Load reads a complete snapshot from path with strict validation.
func Load(path string) (*Snapshot, error) {
	return LoadWithOptions(path, ReaderOptions{
		ValidationLevel: ValidationStrict,
	})
}

// LoadWithOptions reads a complete snapshot with custom reader options.
func LoadWithOptions(path string, opts ReaderOptions) (*Snapshot, error) {
	r, err := OpenWithOptions(path, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close() // Best effort close
	}()

	return r.Snapshot()
}

// newRawFromMeta allocates a RawTensor matching the stored metadata.
func newRawFromMeta(meta *TensorMeta) (*tensor.RawTensor, error) {
	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("unsupported dtype: %s", meta.DType)
	}

	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for tensor %s: %w", meta.Name, err)
	}

	raw, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}

	if int64(raw.ByteSize()) != meta.Size {
		return nil, fmt.Errorf("tensor %s: declared size %d does not match shape %v (%d bytes)",
			meta.Name, meta.Size, shape, raw.ByteSize())
	}

	return raw, nil
}

// ReadFrom reads a complete snapshot from an io.Reader.
// The checksum is always verified since the whole data section is
// consumed anyway.
func ReadFrom(reader io.Reader) (*Snapshot, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(reader, fixed); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}

	if string(fixed[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if dataSize > uint64(1)<<62 {
		return nil, fmt.Errorf("data size too large: %d", dataSize)
	}

	var stored [32]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header JSON: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	// Skip alignment padding before the data section.
	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	pos := int64(FixedHeaderSize) + int64(headerSize)
	if padding := align64(pos) - pos; padding > 0 {
		if _, err := io.CopyN(io.Discard, reader, padding); err != nil {
			return nil, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("failed to read data section: %w", err)
	}

	if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
		return nil, err
	}

	if err := ValidateHeader(&header, int64(dataSize), ValidationStrict); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tensors := make(map[string]*tensor.RawTensor, len(header.Tensors))
	order := make([]string, 0, len(header.Tensors))
	for i := range header.Tensors {
		meta := &header.Tensors[i]
		raw, err := newRawFromMeta(meta)
		if err != nil {
			return nil, err
		}
		copy(raw.Data(), data[meta.Offset:meta.Offset+meta.Size])
		tensors[meta.Name] = raw
		order = append(order, meta.Name)
	}

	return newSnapshot(header, tensors, order), nil
}
