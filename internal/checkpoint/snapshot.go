package checkpoint

import (
	"sort"
	"strconv"

	"github.com/arca-ml/arca/internal/tensor"
)

// Snapshot is a fully loaded .arca file: every tensor plus its header.
// It recovers what was saved in the form it was saved: an ordered
// sequence for list layout, a name-to-tensor map for map layout.
type Snapshot struct {
	header  Header
	tensors map[string]*tensor.RawTensor
	order   []string
}

func newSnapshot(header Header, tensors map[string]*tensor.RawTensor, order []string) *Snapshot {
	// List layout orders by numeric index regardless of header order.
	if header.Layout == LayoutList {
		sort.Slice(order, func(i, j int) bool {
			a, _ := strconv.Atoi(order[i])
			b, _ := strconv.Atoi(order[j])
			return a < b
		})
	}

	return &Snapshot{
		header:  header,
		tensors: tensors,
		order:   order,
	}
}

// Layout reports whether the snapshot was saved as a sequence or a map.
func (s *Snapshot) Layout() Layout {
	return s.header.Layout
}

// Len returns the number of arrays in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// Arrays returns the arrays in save order.
// For list layout this is the original sequence; for map layout the
// arrays come in sorted name order.
func (s *Snapshot) Arrays() []*tensor.RawTensor {
	arrays := make([]*tensor.RawTensor, 0, len(s.order))
	for _, name := range s.order {
		arrays = append(arrays, s.tensors[name])
	}
	return arrays
}

// Named returns the name-to-tensor map.
// For list layout the names are the synthetic indices "0", "1", ...
func (s *Snapshot) Named() map[string]*tensor.RawTensor {
	return s.tensors
}

// Get returns a tensor by name, or nil if absent.
func (s *Snapshot) Get(name string) *tensor.RawTensor {
	return s.tensors[name]
}

// Names returns tensor names in save order.
func (s *Snapshot) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Header returns the full snapshot header.
func (s *Snapshot) Header() Header {
	return s.header
}

// Metadata returns the custom metadata map.
func (s *Snapshot) Metadata() map[string]string {
	return s.header.Metadata
}

// Checkpoint returns training state, nil for plain array snapshots.
func (s *Snapshot) Checkpoint() *CheckpointMeta {
	return s.header.Checkpoint
}
