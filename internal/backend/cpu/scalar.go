package cpu

import (
	"fmt"

	"github.com/arca-ml/arca/internal/tensor"
)

// MulScalar multiplies every element by a scalar.
// The scalar's Go type must match the tensor's dtype.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), "mulscalar")

	switch x.DType() {
	case tensor.Float32:
		s, ok := scalar.(float32)
		if !ok {
			panic(fmt.Sprintf("mulscalar: expected float32 scalar for %s tensor, got %T", x.DType(), scalar))
		}
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = v * s
		}
	case tensor.Float64:
		s, ok := scalar.(float64)
		if !ok {
			panic(fmt.Sprintf("mulscalar: expected float64 scalar for %s tensor, got %T", x.DType(), scalar))
		}
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = v * s
		}
	case tensor.Int32:
		s, ok := scalar.(int32)
		if !ok {
			panic(fmt.Sprintf("mulscalar: expected int32 scalar for %s tensor, got %T", x.DType(), scalar))
		}
		src := x.AsInt32()
		dst := result.AsInt32()
		for i, v := range src {
			dst[i] = v * s
		}
	case tensor.Int64:
		s, ok := scalar.(int64)
		if !ok {
			panic(fmt.Sprintf("mulscalar: expected int64 scalar for %s tensor, got %T", x.DType(), scalar))
		}
		src := x.AsInt64()
		dst := result.AsInt64()
		for i, v := range src {
			dst[i] = v * s
		}
	default:
		panic(fmt.Sprintf("mulscalar not supported for dtype %s", x.DType()))
	}

	return result
}

// AddScalar adds a scalar to every element.
// The scalar's Go type must match the tensor's dtype.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), "addscalar")

	switch x.DType() {
	case tensor.Float32:
		s, ok := scalar.(float32)
		if !ok {
			panic(fmt.Sprintf("addscalar: expected float32 scalar for %s tensor, got %T", x.DType(), scalar))
		}
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = v + s
		}
	case tensor.Float64:
		s, ok := scalar.(float64)
		if !ok {
			panic(fmt.Sprintf("addscalar: expected float64 scalar for %s tensor, got %T", x.DType(), scalar))
		}
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = v + s
		}
	case tensor.Int32:
		s, ok := scalar.(int32)
		if !ok {
			panic(fmt.Sprintf("addscalar: expected int32 scalar for %s tensor, got %T", x.DType(), scalar))
		}
		src := x.AsInt32()
		dst := result.AsInt32()
		for i, v := range src {
			dst[i] = v + s
		}
	case tensor.Int64:
		s, ok := scalar.(int64)
		if !ok {
			panic(fmt.Sprintf("addscalar: expected int64 scalar for %s tensor, got %T", x.DType(), scalar))
		}
		src := x.AsInt64()
		dst := result.AsInt64()
		for i, v := range src {
			dst[i] = v + s
		}
	default:
		panic(fmt.Sprintf("addscalar not supported for dtype %s", x.DType()))
	}

	return result
}
