package cpu

import (
	"fmt"

	"github.com/arca-ml/arca/internal/tensor"
)

// Sum reduces all elements to a scalar tensor of shape ().
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := mustNewRaw(tensor.Shape{}, x.DType(), "sum")

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		result.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum
	case tensor.Int32:
		var sum int32
		for _, v := range x.AsInt32() {
			sum += v
		}
		result.AsInt32()[0] = sum
	case tensor.Int64:
		var sum int64
		for _, v := range x.AsInt64() {
			sum += v
		}
		result.AsInt64()[0] = sum
	default:
		panic(fmt.Sprintf("sum not supported for dtype %s", x.DType()))
	}

	return result
}

// Mean reduces all elements to their arithmetic mean as a scalar tensor.
// Integer tensors truncate toward zero.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	n := x.NumElements()
	if n == 0 {
		panic("mean of empty tensor")
	}

	result := cpu.Sum(x)

	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] /= float32(n)
	case tensor.Float64:
		result.AsFloat64()[0] /= float64(n)
	case tensor.Int32:
		result.AsInt32()[0] /= int32(n)
	case tensor.Int64:
		result.AsInt64()[0] /= int64(n)
	default:
		panic(fmt.Sprintf("mean not supported for dtype %s", x.DType()))
	}

	return result
}
