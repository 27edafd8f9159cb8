// Package cpu implements the CPU backend with BLAS-accelerated matrix operations.
package cpu

import (
	"fmt"

	"github.com/arca-ml/arca/internal/parallel"
	"github.com/arca-ml/arca/internal/tensor"
)

// CPUBackend implements tensor operations on CPU. Matrix multiplication is
// delegated to gonum's BLAS routines; element-wise kernels run in plain Go
// with chunked parallelism for broadcast paths.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		par: parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// mustNewRaw allocates a result tensor or panics with the operation name.
func mustNewRaw(shape tensor.Shape, dtype tensor.DataType, op string) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("add: %v", err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		// Fast path: same shape, check if we can do inplace
		if a.IsUnique() {
			addInplace(a, b)
			return a
		}
		result := mustNewRaw(outShape, a.DType(), "add")
		addVectorized(result, a, b)
		return result
	}

	// Slow path: broadcasting required
	result := mustNewRaw(outShape, a.DType(), "add")
	cpu.addWithBroadcast(result, a, b, outShape)
	return result
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("sub: %v", err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		if a.IsUnique() {
			subInplace(a, b)
			return a
		}
		result := mustNewRaw(outShape, a.DType(), "sub")
		subVectorized(result, a, b)
		return result
	}

	result := mustNewRaw(outShape, a.DType(), "sub")
	cpu.subWithBroadcast(result, a, b, outShape)
	return result
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("mul: %v", err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		if a.IsUnique() {
			mulInplace(a, b)
			return a
		}
		result := mustNewRaw(outShape, a.DType(), "mul")
		mulVectorized(result, a, b)
		return result
	}

	result := mustNewRaw(outShape, a.DType(), "mul")
	cpu.mulWithBroadcast(result, a, b, outShape)
	return result
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("div: %v", err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		if a.IsUnique() {
			divInplace(a, b)
			return a
		}
		result := mustNewRaw(outShape, a.DType(), "div")
		divVectorized(result, a, b)
		return result
	}

	result := mustNewRaw(outShape, a.DType(), "div")
	cpu.divWithBroadcast(result, a, b, outShape)
	return result
}

// Reshape returns a tensor with the same data but different shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}

	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}

	result := mustNewRaw(newShape, t.DType(), "reshape")
	copy(result.Data(), t.Data())
	return result
}

// Transpose transposes the tensor by permuting its dimensions.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := mustNewRaw(newShape, t.DType(), "transpose")
	transposeData(result, t, axes)
	return result
}
