package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/arca-ml/arca/internal/parallel"
	"github.com/arca-ml/arca/internal/tensor"
)

// MatMul performs matrix multiplication of two 2D tensors.
// Float32 and Float64 go through gonum's BLAS implementation;
// integer tensors fall back to a parallel naive kernel.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul requires 2D tensors, got %v and %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	m, k := aShape[0], aShape[1]
	k2, n := bShape[0], bShape[1]
	if k != k2 {
		panic(fmt.Sprintf("matmul shape mismatch: (%d,%d) x (%d,%d)", m, k, k2, n))
	}

	result := mustNewRaw(tensor.Shape{m, n}, a.DType(), "matmul")

	switch a.DType() {
	case tensor.Float32:
		matmulFloat32(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n)
	case tensor.Float64:
		matmulFloat64(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n)
	case tensor.Int32:
		matmulInt32(result.AsInt32(), a.AsInt32(), b.AsInt32(), m, k, n, cpu.par)
	case tensor.Int64:
		matmulInt64(result.AsInt64(), a.AsInt64(), b.AsInt64(), m, k, n, cpu.par)
	default:
		panic(fmt.Sprintf("matmul not supported for dtype %s", a.DType()))
	}

	return result
}

// matmulFloat32 computes c = a * b using single-precision BLAS (sgemm).
func matmulFloat32(c, a, b []float32, m, k, n int) {
	am := blas32.General{Rows: m, Cols: k, Stride: k, Data: a}
	bm := blas32.General{Rows: k, Cols: n, Stride: n, Data: b}
	cm := blas32.General{Rows: m, Cols: n, Stride: n, Data: c}
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, am, bm, 0, cm)
}

// matmulFloat64 computes c = a * b using double-precision BLAS (dgemm).
func matmulFloat64(c, a, b []float64, m, k, n int) {
	am := blas64.General{Rows: m, Cols: k, Stride: k, Data: a}
	bm := blas64.General{Rows: k, Cols: n, Stride: n, Data: b}
	cm := blas64.General{Rows: m, Cols: n, Stride: n, Data: c}
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, am, bm, 0, cm)
}

func matmulInt32(c, a, b []int32, m, k, n int, cfg parallel.Config) {
	parallel.For2D(m, n, func(i, j int) {
		var sum int32
		for p := 0; p < k; p++ {
			sum += a[i*k+p] * b[p*n+j]
		}
		c[i*n+j] = sum
	}, cfg)
}

func matmulInt64(c, a, b []int64, m, k, n int, cfg parallel.Config) {
	parallel.For2D(m, n, func(i, j int) {
		var sum int64
		for p := 0; p < k; p++ {
			sum += a[i*k+p] * b[p*n+j]
		}
		c[i*n+j] = sum
	}, cfg)
}
