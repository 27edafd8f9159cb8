package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/arca-ml/arca/internal/tensor"
)

// SafeTensors interop.
//
// Format:
//   [8 bytes: header_size (uint64 LE)]
//   [header_size bytes: JSON header]
//   [tensor data: raw bytes]
//
// Tensors are written in alphabetical order by name.

// SafeTensorInfo describes one tensor in a SafeTensors header.
type SafeTensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end]
}

// safeTensorsHeader is the parsed JSON header of a SafeTensors file.
type safeTensorsHeader struct {
	Metadata map[string]string
	Tensors  map[string]SafeTensorInfo
}

func (h *safeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]SafeTensorInfo)
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info SafeTensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}

	return nil
}

// ExportSafeTensors writes named arrays to a SafeTensors file.
// This is the interop path to the HuggingFace ecosystem; the native
// .arca format remains the primary snapshot format.
func ExportSafeTensors(path string, named map[string]*tensor.RawTensor, metadata map[string]string) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for exporting
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best effort close
	}()

	return writeSafeTensors(file, named, metadata)
}

func writeSafeTensors(w io.Writer, named map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}

	var currentOffset int64
	for _, name := range names {
		raw := named[name]
		if raw == nil {
			return fmt.Errorf("tensor %q is nil", name)
		}
		size := int64(raw.ByteSize())

		header[name] = SafeTensorInfo{
			DType:       dtypeToSafeTensors(raw.DType()),
			Shape:       []int(raw.Shape()),
			DataOffsets: [2]int64{currentOffset, currentOffset + size},
		}
		currentOffset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, name := range names {
		if _, err := w.Write(named[name].Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}

	return nil
}

// ImportSafeTensors reads every tensor from a SafeTensors file.
func ImportSafeTensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for importing
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best effort close
	}()

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header safeTensorsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	dataOffset := int64(8) + int64(headerSize)

	named := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for name, info := range header.Tensors {
		dtype, err := safeTensorsToDtype(info.DType)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %s: %w", name, err)
		}

		shape := tensor.Shape(info.Shape)
		if err := shape.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid shape for tensor %s: %w", name, err)
		}

		size := info.DataOffsets[1] - info.DataOffsets[0]
		if size < 0 {
			return nil, nil, fmt.Errorf("invalid data offsets for tensor %s: [%d, %d]",
				name, info.DataOffsets[0], info.DataOffsets[1])
		}

		raw, err := tensor.NewRaw(shape, dtype)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create tensor %s: %w", name, err)
		}
		if int64(raw.ByteSize()) != size {
			return nil, nil, fmt.Errorf("tensor %s: data size %d does not match shape %v (%d bytes)",
				name, size, shape, raw.ByteSize())
		}

		if _, err := file.Seek(dataOffset+info.DataOffsets[0], io.SeekStart); err != nil {
			return nil, nil, fmt.Errorf("failed to seek to tensor %s: %w", name, err)
		}
		if _, err := io.ReadFull(file, raw.Data()); err != nil {
			return nil, nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
		}

		named[name] = raw
	}

	return named, header.Metadata, nil
}

// dtypeToSafeTensors converts tensor.DataType to the SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return "F32"
	case tensor.Float64:
		return "F64"
	case tensor.Int32:
		return "I32"
	case tensor.Int64:
		return "I64"
	case tensor.Uint8:
		return "U8"
	case tensor.Bool:
		return "BOOL"
	default:
		return "F32"
	}
}

// safeTensorsToDtype converts a SafeTensors dtype string to tensor.DataType.
func safeTensorsToDtype(s string) (tensor.DataType, error) {
	switch s {
	case "F32":
		return tensor.Float32, nil
	case "F64":
		return tensor.Float64, nil
	case "I32":
		return tensor.Int32, nil
	case "I64":
		return tensor.Int64, nil
	case "U8":
		return tensor.Uint8, nil
	case "BOOL":
		return tensor.Bool, nil
	case "F16", "BF16":
		return 0, fmt.Errorf("dtype %s requires conversion (not directly supported)", s)
	default:
		return 0, fmt.Errorf("unsupported dtype: %s", s)
	}
}
