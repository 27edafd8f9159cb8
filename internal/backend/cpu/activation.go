package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/arca-ml/arca/internal/tensor"
)

// Softmax computes the softmax along the given dimension.
// Negative dim counts from the last axis, as in NumPy.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("softmax dim %d out of range for %dD tensor", dim, ndim))
	}

	result := mustNewRaw(shape, x.DType(), "softmax")

	switch x.DType() {
	case tensor.Float32:
		softmaxFloat32(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		softmaxFloat64(result.AsFloat64(), x.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("softmax not supported for dtype %s", x.DType()))
	}

	return result
}

func softmaxFloat32(dst, src []float32, shape tensor.Shape, dim int) {
	dimSize := shape[dim]
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*dimSize*inner + in

			// Max-subtraction keeps the exponentials from overflowing.
			maxVal := src[base]
			for d := 1; d < dimSize; d++ {
				if v := src[base+d*inner]; v > maxVal {
					maxVal = v
				}
			}

			var sum float32
			for d := 0; d < dimSize; d++ {
				e := math32.Exp(src[base+d*inner] - maxVal)
				dst[base+d*inner] = e
				sum += e
			}

			for d := 0; d < dimSize; d++ {
				dst[base+d*inner] /= sum
			}
		}
	}
}

func softmaxFloat64(dst, src []float64, shape tensor.Shape, dim int) {
	dimSize := shape[dim]
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*dimSize*inner + in

			maxVal := src[base]
			for d := 1; d < dimSize; d++ {
				if v := src[base+d*inner]; v > maxVal {
					maxVal = v
				}
			}

			var sum float64
			for d := 0; d < dimSize; d++ {
				e := math.Exp(src[base+d*inner] - maxVal)
				dst[base+d*inner] = e
				sum += e
			}

			for d := 0; d < dimSize; d++ {
				dst[base+d*inner] /= sum
			}
		}
	}
}

// ReLU returns max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), "relu")

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			if v > 0 {
				dst[i] = v
			}
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			if v > 0 {
				dst[i] = v
			}
		}
	default:
		panic(fmt.Sprintf("relu not supported for dtype %s", x.DType()))
	}

	return result
}

// Sigmoid returns 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), "sigmoid")

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = 1 / (1 + math32.Exp(-v))
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = 1 / (1 + math.Exp(-v))
		}
	default:
		panic(fmt.Sprintf("sigmoid not supported for dtype %s", x.DType()))
	}

	return result
}

// Tanh returns the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), "tanh")

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = math32.Tanh(v)
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = math.Tanh(v)
		}
	default:
		panic(fmt.Sprintf("tanh not supported for dtype %s", x.DType()))
	}

	return result
}
